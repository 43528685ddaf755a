// Package shell assembles the configuration records the external bootstrap
// component consumes: the root composition shared by both application
// shells and the full application boot config.
package shell

import (
	"storefront/internal/config"
	"storefront/internal/store"
)

// Root is the top-level composition: the restricted-access gate wrapping
// the micro and full application shells. All three share one store list and
// start URL.
type Root struct {
	RestrictAccess Shell `json:"restrict_access"`
	MicroApp       Shell `json:"micro_app"`
	FullApp        Shell `json:"full_app"`
}

// Shell is the part of a shell's props Root owns.
type Shell struct {
	URL    string             `json:"url,omitempty"`
	Stores []store.Descriptor `json:"stores"`
}

// NewRoot builds the root composition for a start URL.
func NewRoot(cfg *config.Config, url string) Root {
	stores := store.Predefined(cfg.DataOrigin())
	shell := Shell{URL: url, Stores: stores}
	return Root{
		RestrictAccess: shell,
		MicroApp:       shell,
		FullApp:        shell,
	}
}
