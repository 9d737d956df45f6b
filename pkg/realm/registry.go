package realm

import (
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/magiconair/properties"

	"github.com/aussiebroadwan/keygate/pkg/keycloak"
	"github.com/aussiebroadwan/keygate/pkg/slogx"
)

const (
	// PropertiesFile names the optional registry settings file inside the
	// config directory.
	PropertiesFile = "keygate.properties"

	// DefaultConfigFile is the connection file used when the properties file
	// configures nothing else.
	DefaultConfigFile = "keycloak.json"

	// configFilesKey lists the connection files, comma or semicolon
	// separated, relative to the config directory.
	configFilesKey = "keygate.auth.config"
)

// Registry owns the process's provider connections. It is built once at
// startup from a config directory and handed to callers by reference; there
// is deliberately no package-level client cache.
//
// One configured file yields a single-connection client, several yield a
// composite, and every file that is missing or broken yields a no-op client
// in its slot.
type Registry struct {
	dir    string
	logger *slog.Logger
	client Client
}

// NewRegistry loads the config directory and builds the client variant the
// configuration calls for. It never fails: misconfiguration degrades to
// no-op clients with a warning.
func NewRegistry(dir string, logger *slog.Logger) *Registry {
	logger = slogx.WithComponent(logger, "registry")

	r := &Registry{dir: dir, logger: logger}
	files := r.configuredFiles()

	if len(files) == 1 {
		r.client = r.buildClient(files[0], false)
		logger.Info("created keycloak client", "config", files[0])
	} else {
		clients := make([]Client, 0, len(files))
		for _, file := range files {
			clients = append(clients, r.buildClient(file, true))
		}
		r.client = NewCompositeClient(clients, logger)
		logger.Info("created composite keycloak client", "connections", len(files))
	}
	return r
}

// Client returns the facade built at construction time.
func (r *Registry) Client() Client {
	return r.client
}

// configuredFiles reads the connection file list from the properties file,
// defaulting to the single standard connection file.
func (r *Registry) configuredFiles() []string {
	list := ""
	props, err := properties.LoadFile(filepath.Join(r.dir, PropertiesFile), properties.UTF8)
	if err == nil {
		list = strings.TrimSpace(props.GetString(configFilesKey, ""))
	}
	if list == "" {
		return []string{DefaultConfigFile}
	}

	var files []string
	for _, file := range strings.FieldsFunc(list, func(c rune) bool { return c == ',' || c == ';' }) {
		if file = strings.TrimSpace(file); file != "" {
			files = append(files, file)
		}
	}
	if len(files) == 0 {
		return []string{DefaultConfigFile}
	}
	return files
}

// buildClient turns one connection file into a client, degrading to the
// no-op variant when the file is missing or invalid.
func (r *Registry) buildClient(file string, multi bool) Client {
	cfg, err := keycloak.LoadConfig(filepath.Join(r.dir, file))
	if err != nil {
		r.logger.Warn("connection is not usable, substituting a no-op client", "config", file, "error", err)
		return NewNoopClient()
	}

	// With several connections on one host, every connection needs a source
	// code to keep role ids collision-free; derive one from the file name
	// when the config does not set it.
	if multi && cfg.SourceCode == "" {
		cfg.SourceCode = deriveSourceCode(file)
	}

	client, err := NewClient(cfg, r.logger)
	if err != nil {
		r.logger.Warn("connection is not usable, substituting a no-op client", "config", file, "error", err)
		return NewNoopClient()
	}
	return client
}

// deriveSourceCode extracts the middle segment of a connection file name:
// "keycloak.kc1.json" yields "kc1", the plain "keycloak.json" yields "".
func deriveSourceCode(file string) string {
	name := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	name = strings.TrimPrefix(name, "keycloak")
	return strings.Trim(name, ".")
}
