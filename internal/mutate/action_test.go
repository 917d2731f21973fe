package mutate

import (
	"reflect"
	"testing"

	"github.com/zanvidmar/vitrina/internal/model"
)

func records(specs ...model.Record) []model.Record {
	return specs
}

func rec(id int64, archived bool) model.Record {
	return model.Record{ID: id, IsArchived: archived}
}

func project(base []model.Record, pending ...Action) []model.Record {
	return Project[model.Record, *model.Record](base, pending)
}

func TestProjectArchive(t *testing.T) {
	base := records(rec(1, false), rec(2, false))

	out := project(base, Action{Kind: KindArchive, IDs: []int64{1}})
	if !out[0].IsArchived {
		t.Error("expected record 1 to be archived")
	}
	if out[1].IsArchived {
		t.Error("expected record 2 untouched")
	}
}

func TestProjectArchiveIdempotent(t *testing.T) {
	base := records(rec(1, true))

	out := project(base,
		Action{Kind: KindArchive, IDs: []int64{1}},
		Action{Kind: KindArchive, IDs: []int64{1}},
	)
	if !out[0].IsArchived {
		t.Error("archiving an archived record must keep it archived")
	}

	out = project(records(rec(1, false)), Action{Kind: KindRestore, IDs: []int64{1}})
	if out[0].IsArchived {
		t.Error("restoring an active record must keep it active")
	}
}

func TestProjectBulkEqualsSingle(t *testing.T) {
	base := records(rec(1, false), rec(2, false))

	single := project(base, Action{Kind: KindArchive, IDs: []int64{1}})
	bulk := project(base, Action{Kind: KindArchive, IDs: []int64{1}})
	if !reflect.DeepEqual(single, bulk) {
		t.Error("bulkArchive([id]) must equal archive(id)")
	}
}

func TestProjectDeleteIsTerminal(t *testing.T) {
	base := records(rec(1, false), rec(2, false))

	out := project(base,
		Action{Kind: KindDelete, IDs: []int64{1}},
		Action{Kind: KindArchive, IDs: []int64{1}},
		Action{Kind: KindRestore, IDs: []int64{1}},
	)
	if len(out) != 1 || out[0].ID != 2 {
		t.Fatalf("expected only record 2 to remain, got %+v", out)
	}
	if out[0].IsArchived {
		t.Error("actions on a deleted id must not touch other records")
	}
}

func TestProjectBulkDelete(t *testing.T) {
	base := records(rec(1, false), rec(2, true), rec(3, false))

	out := project(base, Action{Kind: KindDelete, IDs: []int64{1, 2}})
	if len(out) != 1 || out[0].ID != 3 {
		t.Fatalf("expected only record 3 to remain, got %+v", out)
	}
}

func TestProjectPurity(t *testing.T) {
	base := records(rec(1, false), rec(2, false))
	actions := []Action{
		{Kind: KindArchive, IDs: []int64{1}},
		{Kind: KindDelete, IDs: []int64{2}},
	}

	first := project(base, actions...)
	second := project(base, actions...)

	if !reflect.DeepEqual(first, second) {
		t.Error("same inputs must yield the same projection")
	}
	if base[0].IsArchived || len(base) != 2 {
		t.Error("projection must not mutate its input")
	}
}

func TestProjectUnknownKindIgnored(t *testing.T) {
	base := records(rec(1, false))

	out := project(base, Action{Kind: Kind(99), IDs: []int64{1}})
	if !reflect.DeepEqual(out, base) {
		t.Error("unrecognized action must leave the projection unchanged")
	}
}

func TestProjectLastDispatchedWins(t *testing.T) {
	base := records(rec(1, false))

	out := project(base,
		Action{Kind: KindArchive, IDs: []int64{1}},
		Action{Kind: KindRestore, IDs: []int64{1}},
	)
	if out[0].IsArchived {
		t.Error("expected the later restore to win")
	}
}
