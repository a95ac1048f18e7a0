package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   Params
		want Params
	}{
		{"zero value", Params{}, Params{Page: 1, Limit: 10}},
		{"negative page", Params{Page: -3, Limit: 20}, Params{Page: 1, Limit: 20}},
		{"limit capped", Params{Page: 2, Limit: 500}, Params{Page: 2, Limit: 100}},
		{"valid untouched", Params{Page: 4, Limit: 25, Search: "tee"}, Params{Page: 4, Limit: 25, Search: "tee"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Normalize())
		})
	}
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, Params{Page: 1, Limit: 10}.Offset())
	assert.Equal(t, 40, Params{Page: 5, Limit: 10}.Offset())
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(45, Params{Page: 2, Limit: 10})
	assert.Equal(t, Pagination{Total: 45, Page: 2, Limit: 10, Pages: 5}, p)

	empty := NewPagination(0, Params{Page: 1, Limit: 10})
	assert.Equal(t, 0, empty.Pages)
}
