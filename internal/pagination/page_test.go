package pagination_test

import (
	"testing"

	"github.com/vladislavdragonenkov/store/internal/pagination"
)

func intRange(n int) []int {
	result := make([]int, n)
	for i := range result {
		result[i] = i + 1
	}
	return result
}

func TestPaginate_MiddlePage(t *testing.T) {
	page := pagination.Paginate(intRange(50), 2, 10)

	if page.CurrentPage != 2 {
		t.Fatalf("expected current page 2, got %d", page.CurrentPage)
	}
	if page.PageSize != 10 {
		t.Fatalf("expected page size 10, got %d", page.PageSize)
	}
	if page.TotalCount != 50 {
		t.Fatalf("expected total count 50, got %d", page.TotalCount)
	}
	if page.TotalPages != 5 {
		t.Fatalf("expected 5 total pages, got %d", page.TotalPages)
	}
	if len(page.Items) != 10 {
		t.Fatalf("expected 10 items, got %d", len(page.Items))
	}
	if page.Items[0] != 11 || page.Items[9] != 20 {
		t.Fatalf("expected items 11..20, got %d..%d", page.Items[0], page.Items[9])
	}
}

func TestPaginate_LastPartialPage(t *testing.T) {
	page := pagination.Paginate(intRange(25), 3, 10)

	if len(page.Items) != 5 {
		t.Fatalf("expected 5 items on last page, got %d", len(page.Items))
	}
	if page.TotalPages != 3 {
		t.Fatalf("expected 3 total pages, got %d", page.TotalPages)
	}
}

func TestPaginate_PageBeyondEnd(t *testing.T) {
	page := pagination.Paginate(intRange(25), 10, 10)

	if len(page.Items) != 0 {
		t.Fatalf("expected empty page, got %d items", len(page.Items))
	}
	if page.TotalCount != 25 {
		t.Fatalf("totals must survive an out-of-range page, got %d", page.TotalCount)
	}
	if page.TotalPages != 3 {
		t.Fatalf("expected 3 total pages, got %d", page.TotalPages)
	}
}

func TestNew_EmptySource(t *testing.T) {
	page := pagination.New([]string{}, 0, 1, 10)

	if page.TotalPages != 0 {
		t.Fatalf("expected 0 total pages for empty source, got %d", page.TotalPages)
	}
	if page.TotalCount != 0 {
		t.Fatalf("expected 0 total count, got %d", page.TotalCount)
	}
}

func TestNew_CeilSemantics(t *testing.T) {
	cases := []struct {
		total, size, pages int
	}{
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{99, 10, 10},
		{100, 10, 10},
		{101, 10, 11},
	}

	for _, tc := range cases {
		page := pagination.New([]int{}, tc.total, 1, tc.size)
		if page.TotalPages != tc.pages {
			t.Fatalf("total=%d size=%d: expected %d pages, got %d", tc.total, tc.size, tc.pages, page.TotalPages)
		}
	}
}

func TestMap_PreservesMetadata(t *testing.T) {
	source := pagination.Paginate(intRange(7), 1, 5)

	mapped := pagination.Map(source, func(v int) int { return v * 2 })

	if mapped.TotalCount != source.TotalCount || mapped.TotalPages != source.TotalPages {
		t.Fatalf("metadata changed during map: %+v vs %+v", mapped, source)
	}
	if mapped.Items[0] != 2 {
		t.Fatalf("expected transformed item 2, got %d", mapped.Items[0])
	}
}
