package main

import (
	"fmt"
	"os"
	"time"

	"github.com/pfrederiksen/musiclist/internal/calendar"
	"github.com/pfrederiksen/musiclist/internal/event"
)

// Writes a sample .ics with a timed and an all-day show for checking imports
// into calendar apps by hand.
func main() {
	start := event.DateOf(time.Now().AddDate(0, 0, 7))

	timed := event.NewEvent("The Warfield", start,
		[]string{"BOYGENIUS", "ILLUMINATI HOTTIES"}, "https://www.thewarfieldtheatre.com/events/")
	timed.Time = &event.Clock{Hour: 20}
	timed.Cost = "$55.00 - $95.00"

	allDay := event.NewEvent("Neck of the Woods", start.AddDate(0, 0, 1),
		[]string{"SOCCER MOMMY"}, "https://www.neckofthewoodssf.com/calendar/")
	allDay.Cost = "No cover"

	icsContent := calendar.GenerateICS([]*event.Event{timed, allDay}, "musiclist sample")

	// Write to file (owner read/write only)
	filename := "test-musiclist.ics"
	if err := os.WriteFile(filename, []byte(icsContent), 0600); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Wrote %s\n", filename)
	fmt.Println("Open it with your calendar app to check both shows import correctly.")
}
