package match

import "testing"

func sampleRecord(home, away, venue string) Record {
	return Record{
		Competition: "All-Ireland Senior Hurling Championship",
		HomeTeam:    home,
		AwayTeam:    away,
		RawDate:     "Saturday 14 June",
		Venue:       venue,
	}
}

func TestDeduplicator_AddIsIdempotent(t *testing.T) {
	t.Parallel()

	batch := []Record{
		sampleRecord("Kilkenny", "Galway", "Nowlan Park"),
		sampleRecord("Cork", "Limerick", "Páirc Uí Chaoimh"),
	}

	d := NewDeduplicator(0)
	first := d.Add(batch)
	second := d.Add(batch)

	if len(first) != 2 {
		t.Fatalf("expected 2 new records on first add, got %d", len(first))
	}
	if len(second) != 0 {
		t.Fatalf("expected no new records on second add, got %d", len(second))
	}
	if d.Len() != 2 {
		t.Fatalf("expected 2 unique records, got %d", d.Len())
	}
}

func TestDeduplicator_KeepsFirstSeenForSameIdentity(t *testing.T) {
	t.Parallel()

	d := NewDeduplicator(4)
	d.Add([]Record{
		sampleRecord("Kilkenny", "Galway", "Nowlan Park"),
		sampleRecord("Kilkenny", "Galway", "Pearse Stadium"),
	})
	d.Add([]Record{sampleRecord("Kilkenny", "Galway", "Croke Park")})

	records := d.Records()
	if len(records) != 1 {
		t.Fatalf("expected exactly one record, got %d", len(records))
	}
	if records[0].Venue != "Nowlan Park" {
		t.Fatalf("expected first-seen venue to win, got %q", records[0].Venue)
	}
}

func TestDeduplicator_IdentityIncludesDateAndCompetition(t *testing.T) {
	t.Parallel()

	a := sampleRecord("Dublin", "Kerry", "")
	b := a
	b.RawDate = "Sunday 27 July"
	c := a
	c.Competition = "National Football League Division 1"

	d := NewDeduplicator(0)
	if got := len(d.Add([]Record{a, b, c})); got != 3 {
		t.Fatalf("expected 3 distinct identities, got %d", got)
	}
}

func TestMerge_NewerReplacesOlderInPlace(t *testing.T) {
	t.Parallel()

	older := []Record{
		sampleRecord("Kilkenny", "Galway", "Nowlan Park"),
		sampleRecord("Cork", "Limerick", ""),
	}
	newer := []Record{
		sampleRecord("Cork", "Limerick", "Semple Stadium"),
		sampleRecord("Clare", "Waterford", ""),
	}

	got := Merge(older, newer)
	if len(got) != 3 {
		t.Fatalf("expected 3 merged records, got %d", len(got))
	}
	if got[1].Venue != "Semple Stadium" {
		t.Fatalf("expected newer record to replace older, got venue %q", got[1].Venue)
	}
	if got[2].HomeTeam != "Clare" {
		t.Fatalf("expected new key appended last, got %q", got[2].HomeTeam)
	}
}
