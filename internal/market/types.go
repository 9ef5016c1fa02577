package market

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrUnknownSector = errors.New("unknown sector")
	ErrInvalidDate   = errors.New("invalid date")
)

// DateFormat is the zero-padded layout of every sample and news date.
// Dates compare lexicographically, which only works while the padding is kept.
const DateFormat = "2006-01-02"

// MinPrice is the floor applied by sector adjustments.
var MinPrice = decimal.NewFromInt(1)

// Sector is one of the fixed economic categories shared by instruments and news.
type Sector uint8

const (
	SectorUnknown Sector = iota
	SectorTechnology
	SectorFinance
	SectorHealth
	SectorConsumer
	SectorEnergy
	SectorIndustrial
	SectorTelecommunications
	SectorMaterials
)

var sectorNames = [...]string{
	SectorUnknown:            "Unknown",
	SectorTechnology:         "Technology",
	SectorFinance:            "Finance",
	SectorHealth:             "Health",
	SectorConsumer:           "Consumer",
	SectorEnergy:             "Energy",
	SectorIndustrial:         "Industrial",
	SectorTelecommunications: "Telecommunications",
	SectorMaterials:          "Materials",
}

func (s Sector) String() string {
	if int(s) < len(sectorNames) {
		return sectorNames[s]
	}
	return sectorNames[SectorUnknown]
}

// Valid reports whether s is one of the eight named sectors.
func (s Sector) Valid() bool {
	return s > SectorUnknown && int(s) < len(sectorNames)
}

// Sectors returns the named sectors in declaration order.
func Sectors() []Sector {
	out := make([]Sector, 0, len(sectorNames)-1)
	for s := SectorTechnology; int(s) < len(sectorNames); s++ {
		out = append(out, s)
	}
	return out
}

// ParseSector resolves a sector name, ignoring case.
func ParseSector(name string) (Sector, error) {
	name = strings.TrimSpace(name)
	for _, s := range Sectors() {
		if strings.EqualFold(name, sectorNames[s]) {
			return s, nil
		}
	}
	return SectorUnknown, fmt.Errorf("%w: %q", ErrUnknownSector, name)
}

func (s Sector) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Sector) UnmarshalText(text []byte) error {
	parsed, err := ParseSector(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ValidDate reports whether s is a real calendar date in DateFormat.
func ValidDate(s string) bool {
	if len(s) != len(DateFormat) {
		return false
	}
	_, err := time.Parse(DateFormat, s)
	return err == nil
}

// CheckDate returns ErrInvalidDate when s is not a valid DateFormat date.
func CheckDate(s string) error {
	if !ValidDate(s) {
		return fmt.Errorf("%w: %q (want YYYY-MM-DD)", ErrInvalidDate, s)
	}
	return nil
}

// PriceSample is one dated closing price.
type PriceSample struct {
	Date  string          `json:"date"`
	Price decimal.Decimal `json:"price"`
}

// Listing describes an instrument to register.
type Listing struct {
	Ticker string          `json:"ticker"`
	Name   string          `json:"name"`
	Sector Sector          `json:"sector"`
	Price  decimal.Decimal `json:"price"`
}

// Record is the full state of one instrument, history oldest first.
type Record struct {
	Listing
	History []PriceSample `json:"history,omitempty"`
}
