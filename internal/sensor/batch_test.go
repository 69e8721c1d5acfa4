package sensor

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeIngester records calls and fails for IDs listed in failFor.
type fakeIngester struct {
	failFor  map[string]bool
	calls    []string
	readings []Reading
}

func (f *fakeIngester) Ingest(_ context.Context, id string, r Reading) error {
	f.calls = append(f.calls, id)
	f.readings = append(f.readings, r)
	if f.failFor[id] {
		return errors.New("storage unavailable")
	}
	return nil
}

func TestIngestNDJSON_CountsOutcomes(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	input := strings.Join([]string{
		`{"id":"s1","gas":0.5,"fire":0}`,
		`not json`,
		`{"id":"s2","gas":1.5,"fire":1,"time":"2026-03-01T10:00:00Z"}`,
	}, "\n")

	res, err := IngestNDJSON(ctx, s, strings.NewReader(input), nil)
	require.NoError(t, err)
	assert.Equal(t, BatchResult{Processed: 2, SkippedMalformed: 1}, res)

	ids, err := s.ListSensors(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"s1", "s2"}, ids)

	readings, err := s.Query(ctx, "s2", TimeRange{}, 0)
	require.NoError(t, err)
	require.Len(t, readings, 1)
	assert.True(t, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC).Equal(readings[0].Time))
}

func TestIngestNDJSON_MalformedVariants(t *testing.T) {
	lines := []string{
		`{"gas":1,"fire":0}`,                // missing id
		`{"id":"","gas":1,"fire":0}`,        // empty id
		`{"id":"s1","fire":0}`,              // missing gas
		`{"id":"s1","gas":1}`,               // missing fire
		`{"id":"s1","gas":"high","fire":0}`, // wrong type
		`{"id":"s1","gas":1,"fire":0,"time":"soon"}`,
		`[1,2,3]`,
	}
	ing := &fakeIngester{}

	res, err := IngestNDJSON(context.Background(), ing, strings.NewReader(strings.Join(lines, "\n")), nil)
	require.NoError(t, err)
	assert.Equal(t, BatchResult{SkippedMalformed: len(lines)}, res)
	assert.Empty(t, ing.calls)
}

func TestIngestNDJSON_FailedIngestsAreSkipped(t *testing.T) {
	ing := &fakeIngester{failFor: map[string]bool{"broken": true}}
	input := `{"id":"ok","gas":1,"fire":0}
{"id":"broken","gas":1,"fire":0}
{"id":"ok","gas":2,"fire":1}
`

	res, err := IngestNDJSON(context.Background(), ing, strings.NewReader(input), nil)
	require.NoError(t, err)
	assert.Equal(t, BatchResult{Processed: 2, SkippedFailed: 1}, res)
	assert.Equal(t, []string{"ok", "broken", "ok"}, ing.calls)
}

func TestIngestNDJSON_InvalidIDCountsAsFailed(t *testing.T) {
	s, _ := newTestStore(t)

	input := `{"id":"bad id","gas":1,"fire":0}`
	res, err := IngestNDJSON(context.Background(), s, strings.NewReader(input), nil)
	require.NoError(t, err)
	assert.Equal(t, BatchResult{SkippedFailed: 1}, res)
}

func TestIngestNDJSON_BlankLinesIgnored(t *testing.T) {
	ing := &fakeIngester{}
	input := "\n\n   \n{\"id\":\"s1\",\"gas\":1,\"fire\":0}\n\r\n"

	res, err := IngestNDJSON(context.Background(), ing, strings.NewReader(input), nil)
	require.NoError(t, err)
	assert.Equal(t, BatchResult{Processed: 1}, res)
}

func TestIngestNDJSON_EmptyInput(t *testing.T) {
	res, err := IngestNDJSON(context.Background(), &fakeIngester{}, strings.NewReader(""), nil)
	require.NoError(t, err)
	assert.Equal(t, BatchResult{}, res)
}

func TestIngestNDJSON_ReaderError(t *testing.T) {
	r := iotest.ErrReader(errors.New("disk gone"))

	_, err := IngestNDJSON(context.Background(), &fakeIngester{}, r, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk gone")
}

func TestIngestNDJSON_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ing := &fakeIngester{}
	_, err := IngestNDJSON(ctx, ing, strings.NewReader(`{"id":"s1","gas":1,"fire":0}`), nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, ing.calls)
}

func TestParseReading(t *testing.T) {
	r, err := ParseReading([]byte(`{"gas":4.5,"fire":1}`))
	require.NoError(t, err)
	assert.Equal(t, Reading{Gas: 4.5, Fire: 1}, r)

	r, err = ParseReading([]byte(`{"gas":0,"fire":0,"time":"2026-03-01"}`))
	require.NoError(t, err)
	assert.True(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC).Equal(r.Time))

	_, err = ParseReading([]byte(`{"fire":0}`))
	assert.ErrorIs(t, err, ErrMalformedRecord)

	_, err = ParseReading([]byte(`{`))
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func TestParseReading_FireFlag(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantFire int
		wantErr  bool
	}{
		{name: "integer one", body: `{"gas":1,"fire":1}`, wantFire: 1},
		{name: "integer zero", body: `{"gas":1,"fire":0}`, wantFire: 0},
		{name: "boolean true", body: `{"gas":1,"fire":true}`, wantFire: 1},
		{name: "boolean false", body: `{"gas":1,"fire":false}`, wantFire: 0},
		{name: "whole float", body: `{"gas":800.0,"fire":1.0}`, wantFire: 1},
		{name: "exponent form", body: `{"gas":1,"fire":0e0}`, wantFire: 0},
		{name: "fractional", body: `{"gas":1,"fire":0.5}`, wantErr: true},
		{name: "string", body: `{"gas":1,"fire":"1"}`, wantErr: true},
		{name: "object", body: `{"gas":1,"fire":{}}`, wantErr: true},
		{name: "null", body: `{"gas":1,"fire":null}`, wantErr: true},
		{name: "out of range", body: `{"gas":1,"fire":1e12}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := ParseReading([]byte(tt.body))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedRecord)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantFire, r.Fire)
		})
	}
}

func TestParseRecord_BooleanFire(t *testing.T) {
	id, r, err := ParseRecord([]byte(`{"id":"s1","gas":800.0,"fire":true}`))
	require.NoError(t, err)
	assert.Equal(t, "s1", id)
	assert.Equal(t, Reading{Gas: 800, Fire: 1}, r)
}

func TestIngestNDJSON_FireFlagForms(t *testing.T) {
	ing := &fakeIngester{}
	input := strings.Join([]string{
		`{"id":"s1","gas":1,"fire":true}`,
		`{"id":"s1","gas":2,"fire":false}`,
		`{"id":"s1","gas":3,"fire":1.0}`,
		`{"id":"s1","gas":4,"fire":0.5}`,
	}, "\n")

	result, err := IngestNDJSON(context.Background(), ing, strings.NewReader(input), nil)
	require.NoError(t, err)
	assert.Equal(t, BatchResult{Processed: 3, SkippedMalformed: 1}, result)

	require.Len(t, ing.readings, 3)
	fires := []int{ing.readings[0].Fire, ing.readings[1].Fire, ing.readings[2].Fire}
	assert.Equal(t, []int{1, 0, 1}, fires)
}

func TestBatchResult_Add(t *testing.T) {
	total := BatchResult{Processed: 1}
	total.Add(BatchResult{Processed: 2, SkippedMalformed: 3, SkippedFailed: 4})
	assert.Equal(t, BatchResult{Processed: 3, SkippedMalformed: 3, SkippedFailed: 4}, total)
}
