package config

import (
	"os"
	"path/filepath"

	"github.com/matzehuels/sysresolve/pkg/artifact"
	"github.com/matzehuels/sysresolve/pkg/errors"
	"github.com/matzehuels/sysresolve/pkg/repository"
)

// Environment variables read by [Config.ApplyEnv] and [Locate].
const (
	EnvConfig        = "SYSRESOLVE_CONFIG"
	EnvBisectCounter = "SYSRESOLVE_BISECT_COUNTER"
	EnvJavaHome      = "JAVA_HOME"
)

// Default repository ids.
const (
	DefaultResolveRepository = "resolve"
	DefaultBisectRepository  = "bisect"
)

// DefaultAddr is the listen address of the HTTP service.
const DefaultAddr = "localhost:8642"

// Config is the resolver configuration.
type Config struct {
	// Debug enables debug logging and provider lookups for every hit.
	Debug bool `toml:"debug" yaml:"debug"`

	// Prefixes are installation roots searched for mapping metadata.
	Prefixes []string `toml:"prefixes" yaml:"prefixes"`

	// MetadataRepositories are directories, relative to each prefix,
	// holding mapping fragments.
	MetadataRepositories []string `toml:"metadata_repositories" yaml:"metadata_repositories"`

	// Blacklist lists coordinates that never resolve, together with
	// everything mapped to or from them.
	Blacklist []string `toml:"blacklist" yaml:"blacklist"`

	// RuntimeHome is the Java runtime directory. Defaults to $JAVA_HOME.
	RuntimeHome string `toml:"runtime_home" yaml:"runtime_home"`

	// ResolveRepository names the repository probed by the system stage.
	ResolveRepository string `toml:"resolve_repository" yaml:"resolve_repository"`

	// BisectRepository names the override repository.
	BisectRepository string `toml:"bisect_repository" yaml:"bisect_repository"`

	// BisectCounter is a counter file path or a redis:// URL. Empty
	// disables bisection.
	BisectCounter string `toml:"bisect_counter" yaml:"bisect_counter"`

	// LoaderWorkers bounds concurrent fragment parsing. Zero picks a
	// default from the CPU count.
	LoaderWorkers int `toml:"loader_workers" yaml:"loader_workers"`

	Repositories []repository.Definition `toml:"repositories" yaml:"repositories"`

	Server ServerConfig `toml:"server" yaml:"server"`

	source string
}

// ServerConfig configures the HTTP service.
type ServerConfig struct {
	Addr string `toml:"addr" yaml:"addr"`
}

// Default returns the built-in configuration.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// DefaultRepositories returns the standard system repositories: a
// "resolve" compound rooted at / over effective POMs, POMs, JNI jars and
// jars, plus a "bisect" repository in Maven layout below the working
// directory.
func DefaultRepositories() []repository.Definition {
	pom := []repository.Stereotype{{Extension: "pom"}}
	jar := []repository.Stereotype{{Extension: "jar"}}
	return []repository.Definition{
		{ID: "base-effective-pom", Type: "flat", Root: "usr/share/maven-effective-poms", Stereotypes: pom},
		{ID: "base-pom", Type: "flat", Root: "usr/share/maven-poms", Stereotypes: pom},
		{ID: "base-jni", Type: "jpp", Root: "usr/lib/java", Stereotypes: jar},
		{ID: "base-jar", Type: "jpp", Root: "usr/share/java", Stereotypes: jar},
		{
			ID:       DefaultResolveRepository,
			Type:     repository.TypeCompound,
			Prefix:   "/",
			Children: []string{"base-effective-pom", "base-pom", "base-jni", "base-jar"},
		},
		{ID: DefaultBisectRepository, Type: "maven", Root: ".m2-bisect"},
	}
}

func (c *Config) applyDefaults() {
	if len(c.Prefixes) == 0 {
		c.Prefixes = []string{"/"}
	}
	if c.MetadataRepositories == nil {
		c.MetadataRepositories = []string{"usr/share/maven-fragments", "etc/maven/fragments"}
	}
	if c.ResolveRepository == "" {
		c.ResolveRepository = DefaultResolveRepository
	}
	if c.BisectRepository == "" {
		c.BisectRepository = DefaultBisectRepository
	}
	if len(c.Repositories) == 0 {
		c.Repositories = DefaultRepositories()
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
}

// ApplyEnv overrides fields from the environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvBisectCounter); v != "" {
		c.BisectCounter = v
	}
	if c.RuntimeHome == "" {
		c.RuntimeHome = os.Getenv(EnvJavaHome)
	}
}

// Source returns the file the configuration was loaded from, or "" for
// the built-in defaults.
func (c *Config) Source() string { return c.source }

// Validate checks repository definitions and blacklist coordinates.
func (c *Config) Validate() error {
	for _, d := range c.Repositories {
		if d.ID == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "repository definition without id")
		}
		if d.Type != repository.TypeCompound && d.Root == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "repository %q has no root", d.ID)
		}
	}

	if _, err := repository.Build(c.Repositories, c.ResolveRepository); err != nil {
		return err
	}
	if c.BisectCounter != "" {
		if _, err := repository.Build(c.Repositories, c.BisectRepository); err != nil {
			return err
		}
	}
	// Catch unreferenced definitions with bad types or children as well.
	for _, d := range c.Repositories {
		if _, err := repository.Build(c.Repositories, d.ID); err != nil {
			return err
		}
	}

	if _, err := c.BlacklistCoordinates(); err != nil {
		return err
	}
	if c.LoaderWorkers < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "loader_workers must not be negative")
	}
	return nil
}

// BlacklistCoordinates parses the configured blacklist.
func (c *Config) BlacklistCoordinates() ([]artifact.Coordinate, error) {
	out := make([]artifact.Coordinate, 0, len(c.Blacklist))
	for _, s := range c.Blacklist {
		a, err := artifact.Parse(s)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "blacklist entry %q", s)
		}
		out = append(out, a)
	}
	return out, nil
}

// MetadataDirs returns every metadata repository below every prefix that
// exists as a directory, in configuration order.
func (c *Config) MetadataDirs() []string {
	var dirs []string
	for _, prefix := range c.Prefixes {
		if info, err := os.Stat(prefix); err != nil || !info.IsDir() {
			continue
		}
		for _, dir := range c.MetadataRepositories {
			dirs = append(dirs, filepath.Join(prefix, dir))
		}
	}
	return dirs
}
