package aggregator

import (
	"errors"
	"reflect"
	"testing"

	"github.com/ALEYI17/InfraSight_traffic/pkg/types"
)

func TestAverageOfOneIsIdentity(t *testing.T) {
	it := map[types.ParticipantID][]float64{
		0: {0.1, 0.7, 1.3, 2.9},
		1: {3, 3, 4, 5},
	}
	got, err := Average(4, []map[types.ParticipantID][]float64{it})
	if err != nil {
		t.Fatal(err)
	}
	for id, s := range it {
		if !reflect.DeepEqual(got[id], s) {
			t.Errorf("participant %d = %v, want %v", id, got[id], s)
		}
	}
}

func TestAverageAcrossIterations(t *testing.T) {
	iterations := []map[types.ParticipantID][]float64{
		{0: {0, 10, 20}, 1: {0, 2, 4}},
		{0: {0, 30, 40}},
		{0: {3, 20, 30}, 1: {2, 4, 6}},
	}
	got, err := Average(3, iterations)
	if err != nil {
		t.Fatal(err)
	}
	want := types.AveragedSeries{
		0: {1, 20, 30},
		// participant 1 is absent from iteration 1 and averaged over two
		1: {1, 3, 5},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Average = %v, want %v", got, want)
	}
}

func TestAverageSharedLength(t *testing.T) {
	got, err := Average(5, []map[types.ParticipantID][]float64{
		{0: {1, 1, 1, 1, 1}},
		{1: {2, 2, 2, 2, 2}, 2: {0, 0, 0, 0, 0}},
	})
	if err != nil {
		t.Fatal(err)
	}
	for id, s := range got {
		if len(s) != 5 {
			t.Errorf("participant %d has length %d, want 5", id, len(s))
		}
	}
}

func TestAveragerRejectsGridMismatch(t *testing.T) {
	av := NewAverager(3)
	err := av.Update(0, map[types.ParticipantID][]float64{0: {1, 2}})
	if !errors.Is(err, types.ErrGridMismatch) {
		t.Fatalf("error = %v, want ErrGridMismatch", err)
	}
	if av.Iterations() != 0 {
		t.Errorf("Iterations() = %d after rejected update", av.Iterations())
	}
}

func TestAveragerRejectsDuplicateIteration(t *testing.T) {
	av := NewAverager(1)
	it := map[types.ParticipantID][]float64{0: {1}}
	if err := av.Update(2, it); err != nil {
		t.Fatal(err)
	}
	if err := av.Update(2, it); err == nil {
		t.Error("second Update of the same iteration was accepted")
	}
}

func TestAveragerRejectedUpdateLeavesSumsUntouched(t *testing.T) {
	av := NewAverager(2)
	if err := av.Update(0, map[types.ParticipantID][]float64{1: {4, 4}}); err != nil {
		t.Fatal(err)
	}
	// Participant 0 sorts first and would be added before 1 is found to repeat.
	err := av.Update(0, map[types.ParticipantID][]float64{0: {100, 100}, 1: {8, 8}})
	if err == nil {
		t.Fatal("Update repeating iteration 0 was accepted")
	}
	got := av.Flush()
	want := types.AveragedSeries{1: {4, 4}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Flush after rejected Update = %v, want %v", got, want)
	}
	if av.Iterations() != 1 {
		t.Errorf("Iterations = %d, want 1", av.Iterations())
	}
}
