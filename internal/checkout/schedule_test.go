package checkout

import (
	"testing"
	"time"
)

func TestStoreOpenDefaultSchedule(t *testing.T) {
	schedule := DefaultSchedule()
	cases := []struct {
		at   time.Time
		open bool
	}{
		{time.Date(2024, 5, 6, 17, 59, 0, 0, time.UTC), false}, // Monday
		{time.Date(2024, 5, 6, 18, 0, 0, 0, time.UTC), true},
		{time.Date(2024, 5, 6, 22, 0, 0, 0, time.UTC), false},
		{time.Date(2024, 5, 10, 22, 30, 0, 0, time.UTC), true}, // Friday
		{time.Date(2024, 5, 11, 13, 0, 0, 0, time.UTC), true},  // Saturday
		{time.Date(2024, 5, 12, 12, 59, 0, 0, time.UTC), false},
	}
	for _, tc := range cases {
		if got := StoreOpen(schedule, tc.at); got != tc.open {
			t.Fatalf("%s: expected open=%v", tc.at.Format(time.RFC1123), tc.open)
		}
	}
}

func TestStoreOpenAcrossMidnight(t *testing.T) {
	schedule := Schedule{"saturday": {Open: "20:00", Close: "02:00"}}
	if !StoreOpen(schedule, time.Date(2024, 5, 11, 23, 30, 0, 0, time.UTC)) {
		t.Fatalf("expected open late saturday")
	}
	if !StoreOpen(schedule, time.Date(2024, 5, 11, 1, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected open before close on the same weekday")
	}
	if StoreOpen(Schedule{"saturday": {Open: "bad", Close: "02:00"}}, time.Date(2024, 5, 11, 21, 0, 0, 0, time.UTC)) {
		t.Fatalf("malformed hours must be closed")
	}
}
