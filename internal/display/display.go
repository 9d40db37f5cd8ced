// Package display renders feed data as terminal tables and chart files.
package display

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"codeberg.org/mutker/envstation/internal/feed"
	"codeberg.org/mutker/envstation/internal/telemetry"
)

const (
	timeFormat     = "2006-01-02 15:04:05"
	unknownStation = "Unknown"
)

var channelTitles = map[string]string{
	telemetry.Temperature.Key: "Temperature",
	telemetry.Humidity.Key:    "Humidity",
	telemetry.CO2.Key:         "CO2",
}

func channelTitle(ch telemetry.Channel) string {
	if title, ok := channelTitles[ch.Key]; ok {
		return title
	}

	return ch.Key
}

// RenderLatest writes the most recent entry as a key/value table.
func RenderLatest(w io.Writer, entry feed.Entry) {
	fmt.Fprintln(w, "Latest Environmental Sensor Data")
	fmt.Fprintln(w, strings.Repeat("=", 40))

	station := entry.StationID()
	if station == "" {
		station = unknownStation
	}

	table := tablewriter.NewWriter(w)
	table.Append([]string{"Station ID", station})
	table.Append([]string{"Timestamp", entry.CreatedAt.Format(timeFormat)})
	for _, ch := range telemetry.Channels() {
		table.Append([]string{channelTitle(ch), formatReading(entry, ch)})
	}
	table.Render()
}

// RenderHistory writes one channel's readings over the window as a table.
func RenderHistory(w io.Writer, result feed.Feed, ch telemetry.Channel, window time.Duration) {
	hours := int(window.Hours())

	fmt.Fprintf(w, "Historical %s Data for the Last %d Hours\n", channelTitle(ch), hours)
	fmt.Fprintf(w, "Station ID: %s\n", feedStation(result))
	fmt.Fprintln(w, strings.Repeat("=", 60))

	points := result.Points(ch)
	if len(points) == 0 {
		fmt.Fprintf(w, "No valid %s data found for the last %d hours\n", ch.Key, hours)
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Timestamp", fmt.Sprintf("%s (%s)", channelTitle(ch), ch.Unit)})
	for _, point := range points {
		table.Append([]string{point.Time.Format(timeFormat), fmt.Sprintf("%.2f", point.Value)})
	}
	table.Render()
}

func formatReading(entry feed.Entry, ch telemetry.Channel) string {
	value, ok := entry.Value(ch)
	if !ok {
		return "n/a"
	}

	return fmt.Sprintf("%.2f %s", value, ch.Unit)
}

// feedStation returns the station behind the first entry that carries one.
func feedStation(result feed.Feed) string {
	for _, entry := range result.Entries {
		if id := entry.StationID(); id != "" {
			return id
		}
	}

	return unknownStation
}
