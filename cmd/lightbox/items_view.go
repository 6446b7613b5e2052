package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"lightbox/internal/listing"
	"lightbox/internal/pipeline"
	"lightbox/internal/services"
)

var titleCaser = cases.Title(language.English)

// displayName turns listing names such as "old_car-1902" into "Old Car 1902".
func displayName(name string) string {
	cleaned := strings.Join(strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	}), " ")
	if cleaned == "" {
		return "(untitled)"
	}
	return titleCaser.String(cleaned)
}

func itemTable(items []pipeline.Item, stats pipeline.Stats) string {
	rows := make([][]string, 0, len(items))
	var total uint64
	for _, item := range items {
		size := "-"
		if len(item.Artifact) > 0 {
			total += uint64(len(item.Artifact))
			size = humanize.Bytes(uint64(len(item.Artifact)))
		}
		note := services.FailureLabel(item.Failure)
		if !item.HasLocator() {
			note = "no locator"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", item.Key),
			displayName(item.Name),
			item.Phase(),
			size,
			note,
		})
	}
	return tableSpec{
		title:   "Items",
		headers: []string{"#", "Name", "State", "Size", "Note"},
		aligns:  []columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft},
		rows:    rows,
		footer: []string{
			"",
			fmt.Sprintf("%d items", stats.Items),
			summarizeStates(stats),
			humanize.Bytes(total),
			"",
		},
	}.render()
}

func listingTable(records []listing.Record) string {
	rows := make([][]string, 0, len(records))
	for i, rec := range records {
		locator := rec.Locator
		if strings.TrimSpace(locator) == "" {
			locator = "(none)"
		}
		rows = append(rows, []string{fmt.Sprintf("%d", i), displayName(rec.Name), locator})
	}
	return tableSpec{
		headers: []string{"#", "Name", "Locator"},
		aligns:  []columnAlignment{alignRight, alignLeft, alignLeft},
		rows:    rows,
		footer:  []string{"", fmt.Sprintf("%d records", len(records)), ""},
	}.render()
}

func summarizeStates(stats pipeline.Stats) string {
	order := []pipeline.State{pipeline.StateTransformed, pipeline.StateFetched, pipeline.StateFailed, pipeline.StateNew}
	parts := make([]string, 0, len(order))
	for _, state := range order {
		if n := stats.ByState[state]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, state))
		}
	}
	return strings.Join(parts, ", ")
}
