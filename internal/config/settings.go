package config

import (
	"fmt"
	"strings"
	"time"
)

// Source and panel backends.
const (
	SourceGPSD = "gpsd"
	SourceNMEA = "nmea"

	PanelStreamDeck = "streamdeck"
	PanelTerminal   = "terminal"
)

const (
	defaultGPSDAddr   = "127.0.0.1:2947"
	defaultNMEAPort   = "/dev/ttyUSB0"
	defaultNMEABaud   = 9600
	defaultVendorID   = 0x0fd9
	defaultProductID  = 0x006d
	defaultBrightness = 80
	defaultPollMs     = 10
	defaultInterface  = "en0"
)

// DefaultCategories is the ordered category set used when the config names none.
var DefaultCategories = []string{
	"fire_hydrant", "bicycle-parking", "corrosion", "bump", "szaglocso",
	"stop", "speed_display", "waste-basket", "parking-ticket-vending",
	"kick-scooter-parking", "bench", "hunting-stand", "post-box",
	"camera", "kotras", "zebra", "taxi", "recycling", "substation",
}

// Settings holds fully resolved runtime settings.
type Settings struct {
	DBPath      string
	RulesPath   string
	SourceType  string
	GPSDAddr    string
	NMEAPort    string
	NMEABaud    int
	PanelType   string
	VendorID    uint16
	ProductID   uint16
	Brightness  int
	IconDir     string
	Categories  []string
	PollTimeout time.Duration
	LogFile     string
	Interface   string
}

// Resolve applies file values over defaults and validates the result.
func Resolve(fc FileConfig) (Settings, error) {
	s := Settings{
		DBPath:      DefaultDBPath(),
		RulesPath:   DefaultRulesPath(),
		SourceType:  SourceGPSD,
		GPSDAddr:    defaultGPSDAddr,
		NMEAPort:    defaultNMEAPort,
		NMEABaud:    defaultNMEABaud,
		PanelType:   PanelStreamDeck,
		VendorID:    defaultVendorID,
		ProductID:   defaultProductID,
		Brightness:  defaultBrightness,
		IconDir:     DefaultIconDir(),
		Categories:  append([]string(nil), DefaultCategories...),
		PollTimeout: defaultPollMs * time.Millisecond,
		LogFile:     DefaultLogPath(),
		Interface:   defaultInterface,
	}

	applyString(&s.DBPath, fc.Store.Path)
	applyString(&s.RulesPath, fc.Export.Rules)
	applyString(&s.SourceType, fc.Source.Type)
	applyString(&s.GPSDAddr, fc.Source.GPSDAddr)
	applyString(&s.NMEAPort, fc.Source.NMEAPort)
	applyInt(&s.NMEABaud, fc.Source.NMEABaud)
	applyString(&s.PanelType, fc.Panel.Type)
	applyString(&s.IconDir, fc.Panel.IconDir)
	applyString(&s.LogFile, fc.Panel.LogFile)
	applyInt(&s.Brightness, fc.Panel.Brightness)
	applyString(&s.Interface, fc.Status.Interface)
	if fc.Panel.VendorID != nil {
		s.VendorID = uint16(*fc.Panel.VendorID)
	}
	if fc.Panel.ProductID != nil {
		s.ProductID = uint16(*fc.Panel.ProductID)
	}
	if fc.Panel.PollMs != nil {
		if *fc.Panel.PollMs <= 0 {
			return Settings{}, fmt.Errorf("panel.poll-ms must be > 0")
		}
		s.PollTimeout = time.Duration(*fc.Panel.PollMs) * time.Millisecond
	}
	if fc.Panel.Categories != nil {
		s.Categories = append([]string(nil), fc.Panel.Categories...)
	}

	if err := s.validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func (s Settings) validate() error {
	switch s.SourceType {
	case SourceGPSD, SourceNMEA:
	default:
		return fmt.Errorf("unknown source.type %q (want %s or %s)", s.SourceType, SourceGPSD, SourceNMEA)
	}
	switch s.PanelType {
	case PanelStreamDeck, PanelTerminal:
	default:
		return fmt.Errorf("unknown panel.type %q (want %s or %s)", s.PanelType, PanelStreamDeck, PanelTerminal)
	}
	if s.Brightness < 0 || s.Brightness > 100 {
		return fmt.Errorf("panel.brightness must be between 0 and 100")
	}
	if s.NMEABaud <= 0 {
		return fmt.Errorf("source.nmea-baud must be > 0")
	}
	if len(s.Categories) == 0 {
		return fmt.Errorf("panel.categories must not be empty")
	}
	seen := make(map[string]struct{}, len(s.Categories))
	for _, c := range s.Categories {
		if strings.TrimSpace(c) == "" {
			return fmt.Errorf("panel.categories contains an empty slug")
		}
		if _, ok := seen[c]; ok {
			return fmt.Errorf("duplicate category %q", c)
		}
		seen[c] = struct{}{}
	}
	return nil
}

func applyString(target, value *string) {
	if value == nil {
		return
	}
	*target = *value
}

func applyInt(target, value *int) {
	if value == nil {
		return
	}
	*target = *value
}
