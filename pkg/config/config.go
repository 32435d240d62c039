package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// Config provides access to a parsed machine profile with access
// tracking. Sections and options that were never read can be reported
// afterwards, which is how typos in profiles get caught.
//
// A Config is loaded once at startup and read from a single goroutine.
type Config struct {
	sections map[string]*Section
	order    []string // Maintains section order

	// Access tracking for sections
	accessedSections map[string]struct{}
}

// New creates a new empty Config.
func New() *Config {
	return &Config{
		sections:         make(map[string]*Section),
		accessedSections: make(map[string]struct{}),
	}
}

// Load reads a profile file and returns a Config.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: unable to open %s: %w", path, err)
	}
	defer f.Close()

	c := New()
	if err := c.parse(f, path); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadString parses a profile from a string.
func LoadString(data string) (*Config, error) {
	c := New()
	if err := c.parse(strings.NewReader(data), "<string>"); err != nil {
		return nil, err
	}
	return c, nil
}

// parse reads INI-style sections and options. Comments start with '#'.
// Options accept both 'key: value' and 'key = value' forms. Unlike a
// permissive INI reader, malformed lines are errors; a profile drives
// physical hardware and a silently dropped line is worse than a refusal
// to start.
func (c *Config) parse(r io.Reader, path string) error {
	var currentSection string
	var currentOptions map[string]string

	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" {
			continue
		}

		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = strings.TrimSpace(line[:idx])
			if line == "" {
				continue
			}
		}

		// Section header
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			if currentSection != "" {
				c.addSection(currentSection, currentOptions)
			}

			header := strings.TrimSpace(line[1 : len(line)-1])
			if header == "" {
				return fmt.Errorf("config: %s:%d: empty section header", path, lineNum)
			}

			currentSection = header
			currentOptions = make(map[string]string)
			continue
		}

		if currentSection == "" {
			return fmt.Errorf("config: %s:%d: option before any section header", path, lineNum)
		}

		// Parse key: value or key = value
		kv := strings.SplitN(line, ":", 2)
		if len(kv) != 2 {
			kv = strings.SplitN(line, "=", 2)
		}
		if len(kv) != 2 {
			return fmt.Errorf("config: %s:%d: expected 'option = value'", path, lineNum)
		}

		key := strings.TrimSpace(kv[0])
		value := strings.TrimSpace(kv[1])
		if key == "" {
			return fmt.Errorf("config: %s:%d: empty option name", path, lineNum)
		}
		currentOptions[key] = value
	}

	// Save last section
	if currentSection != "" {
		c.addSection(currentSection, currentOptions)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("config: error reading %s: %w", path, err)
	}

	return nil
}

// addSection adds a section to the config. A repeated section header
// merges its options into the existing section.
func (c *Config) addSection(name string, options map[string]string) {
	if existing, ok := c.sections[name]; ok {
		for k, v := range options {
			existing.options[strings.ToLower(k)] = v
		}
		return
	}

	c.sections[name] = newSection(name, options)
	c.order = append(c.order, name)
}

// GetSection returns a Section by name, or error if not found.
func (c *Config) GetSection(name string) (*Section, error) {
	sec, ok := c.sections[name]
	if !ok {
		return nil, ErrMissingSection(name)
	}
	c.accessedSections[name] = struct{}{}
	return sec, nil
}

// GetSectionOptional returns a Section if it exists, or nil if not.
func (c *Config) GetSectionOptional(name string) *Section {
	sec, ok := c.sections[name]
	if ok {
		c.accessedSections[name] = struct{}{}
	}
	return sec
}

// HasSection checks if a section exists.
func (c *Config) HasSection(name string) bool {
	_, ok := c.sections[name]
	return ok
}

// GetSections returns all sections in file order.
func (c *Config) GetSections() []*Section {
	result := make([]*Section, 0, len(c.sections))
	for _, name := range c.order {
		result = append(result, c.sections[name])
	}
	return result
}

// GetSectionNames returns all section names in file order.
func (c *Config) GetSectionNames() []string {
	result := make([]string, len(c.order))
	copy(result, c.order)
	return result
}

// GetPrefixSections returns all sections whose name starts with the
// given prefix, in file order. Each returned section is marked accessed.
func (c *Config) GetPrefixSections(prefix string) []*Section {
	var result []*Section
	for _, name := range c.order {
		if strings.HasPrefix(name, prefix) {
			c.accessedSections[name] = struct{}{}
			result = append(result, c.sections[name])
		}
	}
	return result
}

// GetPrefixSectionNames returns all section names that start with the
// given prefix.
func (c *Config) GetPrefixSectionNames(prefix string) []string {
	var result []string
	for _, name := range c.order {
		if strings.HasPrefix(name, prefix) {
			result = append(result, name)
		}
	}
	return result
}

// GetAccessedSections returns a sorted list of sections that were accessed.
func (c *Config) GetAccessedSections() []string {
	result := make([]string, 0, len(c.accessedSections))
	for name := range c.accessedSections {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}

// GetUnusedSections returns a sorted list of sections that were not accessed.
func (c *Config) GetUnusedSections() []string {
	var result []string
	for name := range c.sections {
		if _, ok := c.accessedSections[name]; !ok {
			result = append(result, name)
		}
	}
	sort.Strings(result)
	return result
}

// CheckUnusedSections returns an error if there are unused sections.
func (c *Config) CheckUnusedSections() error {
	unused := c.GetUnusedSections()
	if len(unused) > 0 {
		return NewConfigError("", "", fmt.Sprintf("unknown sections: %v", unused))
	}
	return nil
}

// CheckUnusedOptions returns an error if any accessed section has
// options that were never read.
func (c *Config) CheckUnusedOptions() error {
	var errors []string
	for name, sec := range c.sections {
		unused := sec.GetUnusedOptions()
		if len(unused) > 0 {
			errors = append(errors, fmt.Sprintf("[%s]: unknown options %v", name, unused))
		}
	}
	if len(errors) > 0 {
		sort.Strings(errors)
		return NewConfigError("", "", strings.Join(errors, "; "))
	}
	return nil
}
