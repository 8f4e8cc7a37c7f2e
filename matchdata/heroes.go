package matchdata

import (
	"encoding/json"
	"fmt"
	"os"
)

type Hero struct {
	ID     int    `json:"id"`
	NameEN string `json:"name_en"`
	NameCN string `json:"name_cn"`
}

// HeroCatalog resolves hero ids to display names.
type HeroCatalog struct {
	heroes map[int]Hero
}

func NewHeroCatalog(heroes []Hero) *HeroCatalog {
	c := &HeroCatalog{heroes: make(map[int]Hero, len(heroes))}
	for _, h := range heroes {
		c.heroes[h.ID] = h
	}
	return c
}

// LoadHeroCatalog reads a JSON array of heroes. An empty path gives an empty catalog.
func LoadHeroCatalog(path string) (*HeroCatalog, error) {
	if path == "" {
		return NewHeroCatalog(nil), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read hero catalog: %w", err)
	}
	var heroes []Hero
	if err := json.Unmarshal(data, &heroes); err != nil {
		return nil, fmt.Errorf("parse hero catalog %s: %w", path, err)
	}
	return NewHeroCatalog(heroes), nil
}

// Name prefers the Chinese name, then the English one, then a placeholder.
func (c *HeroCatalog) Name(id int) string {
	if c != nil {
		if h, ok := c.heroes[id]; ok {
			if h.NameCN != "" {
				return h.NameCN
			}
			if h.NameEN != "" {
				return h.NameEN
			}
		}
	}
	return fmt.Sprintf("Hero %d", id)
}

func (c *HeroCatalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.heroes)
}
