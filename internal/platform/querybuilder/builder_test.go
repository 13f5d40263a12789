package querybuilder

import "testing"

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("match_key", "home_score").
		From("live_updates").
		Where(Eq("match_key", "Cork vs Clare")).
		OrderBy("ts DESC", "id DESC").
		Limit(10).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT match_key, home_score FROM live_updates WHERE match_key = $1 ORDER BY ts DESC, id DESC LIMIT 10"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 || args[0] != "Cork vs Clare" {
		t.Fatalf("unexpected args: %+v", args)
	}

	if _, _, err := Select().From("matches").ToSQL(); err == nil {
		t.Fatalf("expected error for missing columns")
	}
}

func TestInsertBuilder(t *testing.T) {
	query, args, err := InsertInto("live_snapshots").
		Columns("match_key", "home_score").
		Values("Cork vs Clare", "2-24").
		Suffix("ON CONFLICT (match_key) DO UPDATE SET home_score = EXCLUDED.home_score").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO live_snapshots (match_key, home_score) VALUES ($1, $2) ON CONFLICT (match_key) DO UPDATE SET home_score = EXCLUDED.home_score"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "Cork vs Clare" || args[1] != "2-24" {
		t.Fatalf("unexpected args: %+v", args)
	}

	if _, _, err := InsertInto("live_snapshots").Columns("match_key").Values("a", "b").ToSQL(); err == nil {
		t.Fatalf("expected error for mismatched row width")
	}
}

func TestSelectBuilderComparisons(t *testing.T) {
	query, args, err := Select("*").
		From("matches").
		Where(Gte("canonical_ts", int64(10)), Lte("canonical_ts", int64(20)), ContainsFold("competition", "Munster_SHC")).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := `SELECT * FROM matches WHERE canonical_ts >= $1 AND canonical_ts <= $2 AND LOWER(competition) LIKE $3 ESCAPE '\'`
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 || args[2] != `%munster\_shc%` {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestDeleteBuilder(t *testing.T) {
	query, args, err := DeleteFrom("live_updates").Where(Lt("ts", int64(100))).ToSQL()
	if err != nil {
		t.Fatalf("build delete query: %v", err)
	}
	if query != "DELETE FROM live_updates WHERE ts < $1" {
		t.Fatalf("unexpected query: %s", query)
	}
	if len(args) != 1 || args[0] != int64(100) {
		t.Fatalf("unexpected args: %+v", args)
	}

	if _, _, err := DeleteFrom("live_updates").ToSQL(); err == nil {
		t.Fatalf("expected error for unconditional delete")
	}
}

func TestToQuestion(t *testing.T) {
	got := ToQuestion("INSERT INTO t (a, b) VALUES ($1, $2), ($3, $12) ON CONFLICT (a) DO UPDATE SET b = excluded.b")
	want := "INSERT INTO t (a, b) VALUES (?, ?), (?, ?) ON CONFLICT (a) DO UPDATE SET b = excluded.b"
	if got != want {
		t.Fatalf("unexpected rewrite:\nwant: %s\ngot:  %s", want, got)
	}
}

func TestInsertModels(t *testing.T) {
	type row struct {
		Key   string `db:"match_key"`
		Score string `db:"home_score"`
		skip  string
		Note  string `db:"-"`
	}

	query, args, err := InsertModels("live_snapshots", []row{{Key: "a", Score: "1-1"}, {Key: "b", Score: "0-2"}}, "ON CONFLICT (match_key) DO NOTHING")
	if err != nil {
		t.Fatalf("build insert models: %v", err)
	}
	want := "INSERT INTO live_snapshots (match_key, home_score) VALUES ($1, $2), ($3, $4) ON CONFLICT (match_key) DO NOTHING"
	if query != want {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", want, query)
	}
	if len(args) != 4 || args[2] != "b" {
		t.Fatalf("unexpected args: %+v", args)
	}

	cols, err := Columns(row{})
	if err != nil || len(cols) != 2 {
		t.Fatalf("unexpected columns %v err=%v", cols, err)
	}
}
