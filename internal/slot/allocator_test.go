package slot

import (
	"errors"
	"testing"
)

func TestAllocate(t *testing.T) {
	tests := []struct {
		name     string
		occupied map[int]bool
		count    int
		want     int
		wantErr  error
	}{
		{
			name:     "empty site gets position 1",
			occupied: map[int]bool{},
			count:    5,
			want:     1,
		},
		{
			name:     "lowest free position wins",
			occupied: map[int]bool{1: true, 2: true},
			count:    5,
			want:     3,
		},
		{
			name:     "gap is filled first",
			occupied: map[int]bool{1: true, 3: true, 4: true},
			count:    5,
			want:     2,
		},
		{
			name:     "last position",
			occupied: map[int]bool{1: true, 2: true, 3: true, 4: true},
			count:    5,
			want:     5,
		},
		{
			name:     "full site fails",
			occupied: map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true},
			count:    5,
			wantErr:  ErrNoCapacity,
		},
		{
			name:     "zero count falls back to default",
			occupied: map[int]bool{},
			count:    0,
			want:     1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Allocate(tt.occupied, tt.count)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Allocate() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Allocate() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Allocate() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAllocate_SequentialFill(t *testing.T) {
	occupied := map[int]bool{}

	for want := 1; want <= 5; want++ {
		got, err := Allocate(occupied, 5)
		if err != nil {
			t.Fatalf("Allocate() #%d error = %v", want, err)
		}
		if got != want {
			t.Errorf("Allocate() #%d = %d, want %d", want, got, want)
		}
		occupied[got] = true
	}

	if _, err := Allocate(occupied, 5); !errors.Is(err, ErrNoCapacity) {
		t.Errorf("sixth Allocate() error = %v, want ErrNoCapacity", err)
	}
}
