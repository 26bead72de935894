package mongo

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/circuitcraft/academy-admin/internal/core/domain"
)

func TestContentFilter_Empty(t *testing.T) {
	if f := contentFilter(contentLayouts[domain.ContentCourses], domain.ContentQuery{}); len(f) != 0 {
		t.Fatalf("expected an empty filter, got %v", f)
	}
}

func TestContentFilter_SearchIsLiteralAndCaseInsensitive(t *testing.T) {
	f := contentFilter(contentLayouts[domain.ContentElectronics], domain.ContentQuery{Search: "555 (timer)", Category: "ICs"})

	if f["category"] != "ICs" {
		t.Errorf("category = %v, want ICs", f["category"])
	}
	or, ok := f["$or"].(bson.A)
	if !ok || len(or) != 2 {
		t.Fatalf("expected two $or clauses, got %v", f["$or"])
	}
	for i, field := range []string{"name", "description"} {
		clause := or[i].(bson.M)
		re, ok := clause[field].(primitive.Regex)
		if !ok {
			t.Fatalf("clause %d does not match %s: %v", i, field, clause)
		}
		if re.Pattern != `555 \(timer\)` || re.Options != "i" {
			t.Errorf("unexpected regex %+v", re)
		}
	}
}

func TestContentLayouts_CoverEveryKind(t *testing.T) {
	for _, kind := range []domain.ContentKind{domain.ContentCourses, domain.ContentWorkshops, domain.ContentElectronics, domain.ContentProjects} {
		if _, ok := contentLayouts[kind]; !ok {
			t.Errorf("no layout for %s", kind)
		}
	}
	if _, err := NewContentRepository[*domain.Course](nil, "gadgets"); err == nil {
		t.Errorf("expected an error for an unknown kind")
	}
}
