package persistence

import (
	"log"
	"os"

	"github.com/dennisrathgeb/kilnctl/internal/model"
)

// Store owns the two file paths standing in for the settings and programs
// flash pages (spec.md §4.10/§6's FLASH_SETTINGS_ADDR / FLASH_PROGRAMS_ADDR).
type Store struct {
	settingsPath string
	programsPath string
}

// NewStore binds a Store to the given paths. Neither file needs to exist
// yet; LoadSettings/LoadPrograms fall back to defaults when absent.
func NewStore(settingsPath, programsPath string) *Store {
	return &Store{settingsPath: settingsPath, programsPath: programsPath}
}

// LoadSettings implements the spec.md §4.10 boot contract: attempt to read
// and validate the settings page; on any failure (missing file, bad magic,
// bad CRC, or a range-check miss), fall back to compiled defaults and log
// once. No automatic rewrite happens -- the caller must explicitly Save to
// persist the fallback.
func (s *Store) LoadSettings() model.Settings {
	raw, err := os.ReadFile(s.settingsPath)
	if err != nil {
		log.Printf("persistence: settings page unreadable (%v), falling back to defaults", err)
		return model.Defaults()
	}
	settings, err := DecodeSettings(raw)
	if err != nil {
		log.Printf("persistence: settings page invalid (%v), falling back to defaults", err)
		return model.Defaults()
	}
	return settings
}

// SaveSettings emulates the erase-then-write flash contract: the whole file
// is rewritten with a freshly computed CRC. A process killed mid-write
// leaves a truncated file that fails DecodeSettings' CRC check on the next
// LoadSettings, which is the same failure mode as power loss during a real
// flash page write (spec.md §4.10) -- deliberately not treated specially.
func (s *Store) SaveSettings(settings model.Settings) error {
	return os.WriteFile(s.settingsPath, EncodeSettings(settings), 0o644)
}

// LoadPrograms mirrors LoadSettings for the program-set page, falling back
// to an empty set (no programs) on any failure.
func (s *Store) LoadPrograms() model.ProgramSet {
	raw, err := os.ReadFile(s.programsPath)
	if err != nil {
		log.Printf("persistence: programs page unreadable (%v), falling back to empty set", err)
		return model.ProgramSet{}
	}
	ps, err := DecodeProgramSet(raw)
	if err != nil {
		log.Printf("persistence: programs page invalid (%v), falling back to empty set", err)
		return model.ProgramSet{}
	}
	return ps
}

// SavePrograms rewrites the program-set page.
func (s *Store) SavePrograms(ps model.ProgramSet) error {
	return os.WriteFile(s.programsPath, EncodeProgramSet(ps), 0o644)
}
