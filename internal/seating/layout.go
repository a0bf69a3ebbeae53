package seating

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"boxoffice/internal/models"

	"gopkg.in/yaml.v3"
)

// Section is a block of rows that share the same number of seats
type Section struct {
	Rows  []string `yaml:"rows"`
	Seats int      `yaml:"seats"`
}

// Layout describes a venue as ordered sections
type Layout struct {
	Sections []Section `yaml:"sections"`
}

var errEmptyLayout = errors.New("layout has no sections")

// DefaultLayout is the reference hall: rows A-I with 28 seats, J-M with 22 and a LAST row of 9.
func DefaultLayout() Layout {
	return Layout{
		Sections: []Section{
			{Rows: []string{"A", "B", "C", "D", "E", "F", "G", "H", "I"}, Seats: 28},
			{Rows: []string{"J", "K", "L", "M"}, Seats: 22},
			{Rows: []string{"LAST"}, Seats: 9},
		},
	}
}

// LoadLayout reads a YAML layout file. An empty path yields the default layout.
func LoadLayout(path string) (Layout, error) {
	if path == "" {
		return DefaultLayout(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("failed to read layout file: %w", err)
	}

	var layout Layout
	if err := yaml.Unmarshal(data, &layout); err != nil {
		return Layout{}, fmt.Errorf("failed to parse layout file: %w", err)
	}

	if err := layout.Validate(); err != nil {
		return Layout{}, fmt.Errorf("invalid layout %s: %w", path, err)
	}

	return layout, nil
}

// Validate rejects layouts that would produce duplicate or empty seat ids
func (l Layout) Validate() error {
	if len(l.Sections) == 0 {
		return errEmptyLayout
	}

	seen := make(map[string]bool)
	for i, section := range l.Sections {
		if section.Seats <= 0 {
			return fmt.Errorf("section %d: seats must be positive, got %d", i+1, section.Seats)
		}
		if len(section.Rows) == 0 {
			return fmt.Errorf("section %d: no rows", i+1)
		}
		for _, row := range section.Rows {
			if row == "" {
				return fmt.Errorf("section %d: empty row name", i+1)
			}
			if seen[row] {
				return fmt.Errorf("section %d: duplicate row %q", i+1, row)
			}
			seen[row] = true
		}
	}

	return nil
}

// Size returns the number of seats the layout generates
func (l Layout) Size() int {
	n := 0
	for _, section := range l.Sections {
		n += len(section.Rows) * section.Seats
	}
	return n
}

// Generate returns every seat in row order, numbered from 1. Ids are row + number.
func (l Layout) Generate() []models.Seat {
	seats := make([]models.Seat, 0, l.Size())
	for _, section := range l.Sections {
		for _, row := range section.Rows {
			for i := 1; i <= section.Seats; i++ {
				seats = append(seats, models.Seat{
					ID:     row + strconv.Itoa(i),
					Row:    row,
					Number: i,
				})
			}
		}
	}
	return seats
}
