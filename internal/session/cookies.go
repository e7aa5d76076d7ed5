// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
)

// cookieRecord is the JSON shape of one persisted cookie. Only the fields
// the jar hands back to clients survive a round trip.
type cookieRecord struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// LoadCookies seeds the jar from the configured cookie file for every
// registered site. A missing or unreadable file is not an error; the
// session simply starts cold.
func (s *Session) LoadCookies() error {
	if s.cfg.CookieFile == "" {
		return nil
	}

	data, err := os.ReadFile(s.cfg.CookieFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		fmt.Fprintf(s.out, "warning: could not load cookies file: %v\n", err)
		return nil
	}

	var state map[string][]cookieRecord
	if err := json.Unmarshal(data, &state); err != nil {
		fmt.Fprintf(s.out, "warning: could not parse cookies file: %v\n", err)
		return nil
	}

	for _, site := range s.sites {
		u, err := url.Parse(site)
		if err != nil {
			continue
		}
		var cookies []*http.Cookie
		for _, rec := range state[site] {
			cookies = append(cookies, &http.Cookie{Name: rec.Name, Value: rec.Value, Path: "/"})
		}
		if len(cookies) > 0 {
			s.jar.SetCookies(u, cookies)
		}
	}

	fmt.Fprintln(s.out, "loaded cookies file")
	return nil
}

// SaveCookies persists the current cookie state of every registered site
// back to the configured cookie file.
func (s *Session) SaveCookies() error {
	if s.cfg.CookieFile == "" {
		return nil
	}

	state := make(map[string][]cookieRecord)
	for _, site := range s.sites {
		u, err := url.Parse(site)
		if err != nil {
			continue
		}
		for _, c := range s.jar.Cookies(u) {
			state[site] = append(state[site], cookieRecord{Name: c.Name, Value: c.Value})
		}
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling cookie state: %w", err)
	}
	if err := os.WriteFile(s.cfg.CookieFile, data, 0o600); err != nil {
		return fmt.Errorf("saving cookies file: %w", err)
	}

	fmt.Fprintln(s.out, "saved cookies file")
	return nil
}
