// ABOUTME: Remembers lottery keywords used on this machine
// ABOUTME: Stores them in the XDG config directory and feeds the setup wizard's suggestions

package recentkeywords

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// MaxRecent is the maximum number of keywords to keep
const MaxRecent = 8

// RecentKeywords manages the list of recently used keywords
type RecentKeywords struct {
	configDir string
	keywords  []string
}

type recentData struct {
	Keywords []string `json:"keywords"`
}

// New creates a manager storing its file in configDir
func New(configDir string) *RecentKeywords {
	return &RecentKeywords{configDir: configDir}
}

// DefaultConfigDir returns the default config directory following the XDG base directory layout
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "luckydraw")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "luckydraw")
}

func (rk *RecentKeywords) configFile() string {
	return filepath.Join(rk.configDir, "keywords.json")
}

// Load reads the keyword list from disk. A missing or corrupt file is an empty list.
func (rk *RecentKeywords) Load() ([]string, error) {
	data, err := os.ReadFile(rk.configFile())
	if os.IsNotExist(err) {
		rk.keywords = []string{}
		return rk.keywords, nil
	}
	if err != nil {
		return nil, err
	}

	var recent recentData
	if err := json.Unmarshal(data, &recent); err != nil {
		rk.keywords = []string{}
		return rk.keywords, nil
	}

	rk.keywords = normalize(recent.Keywords)
	return rk.keywords, nil
}

// Save writes the keyword list to disk
func (rk *RecentKeywords) Save(keywords []string) error {
	if err := os.MkdirAll(rk.configDir, 0755); err != nil {
		return err
	}

	rk.keywords = normalize(keywords)

	data, err := json.MarshalIndent(recentData{Keywords: rk.keywords}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(rk.configFile(), data, 0644)
}

// Add moves keyword to the front of the list. Blank keywords are not recorded.
func (rk *RecentKeywords) Add(keyword string) error {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil
	}
	if rk.keywords == nil {
		if _, err := rk.Load(); err != nil {
			rk.keywords = []string{}
		}
	}
	return rk.Save(append([]string{keyword}, rk.keywords...))
}

// List returns the current keywords, most recent first
func (rk *RecentKeywords) List() []string {
	if rk.keywords == nil {
		rk.Load()
	}
	out := make([]string, len(rk.keywords))
	copy(out, rk.keywords)
	return out
}

// normalize trims, drops blanks and duplicates, and caps the list at MaxRecent
func normalize(keywords []string) []string {
	seen := make(map[string]bool, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.TrimSpace(k)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
		if len(out) == MaxRecent {
			break
		}
	}
	return out
}
