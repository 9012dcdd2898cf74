package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

type Specification struct {
	RepoURL   string        `yaml:"repo" envconfig:"REPO"`
	Output    string        `yaml:"out" envconfig:"OUT"`
	WorkDir   string        `yaml:"tmp" envconfig:"TMP"`
	Keep      bool          `yaml:"keep"`
	Provider  string        `yaml:"provider"`
	Model     string        `yaml:"model"`
	Endpoint  string        `yaml:"endpoint"`
	APIKey    string        `yaml:"apiKey" envconfig:"API_KEY"`
	ProjectID string        `yaml:"projectID" split_words:"true"`
	Location  string        `yaml:"location"`
	Timeout   time.Duration `yaml:"timeout"`
	Combine   bool          `yaml:"combine"`
	LogLevel  string        `yaml:"logLevel" split_words:"true"`

	Chunk ChunkSpecification `yaml:"chunk"`
	Scan  ScanSpecification  `yaml:"scan"`
}

type ChunkSpecification struct {
	Size int    `yaml:"size"`
	Unit string `yaml:"unit"`
}

type ScanSpecification struct {
	ExcludeDirs      []string `yaml:"excludeDirs" split_words:"true"`
	Extensions       []string `yaml:"extensions"`
	DependencyFiles  []string `yaml:"dependencyFiles" split_words:"true"`
	RespectGitignore bool     `yaml:"respectGitignore" split_words:"true"`
}

const envPrefix = "REPODOC"

// Default scan sets. Extension and exclusion lists mirror what a typical
// application repository carries; manifests are matched by base name.
var (
	DefaultExtensions = []string{
		".py", ".js", ".jsx", ".ts", ".tsx", ".java", ".go", ".c", ".cpp", ".hpp",
		".cs", ".rb", ".php", ".html", ".css", ".scss", ".yaml", ".yml", ".sh",
		".rs", ".prisma",
	}
	DefaultExcludeDirs = []string{
		"node_modules", "venv", ".venv", "env", ".env", "build", "dist",
		"__pycache__", ".git", "vendor", "target", ".terraform", ".idea",
		".gradle", ".pytest_cache", "coverage", ".cache",
	}
	DefaultDependencyFiles = []string{
		"requirements.txt", "Pipfile", "pyproject.toml", "package.json", "go.mod",
		"Gemfile", "Cargo.toml", "pom.xml", "build.gradle", "composer.json",
	}
)

var (
	knownProviders  = []string{"ollama", "openai", "vertexai", "stub"}
	knownChunkUnits = []string{"chars", "lines", "tokens"}
)

// Usage prints the command synopsis and the flags bound by Load.
func Usage(fs *pflag.FlagSet, w io.Writer) {
	fmt.Fprintf(w, "Usage: repodoc --repo <url> [flags]\n\n")
	fmt.Fprint(w, fs.FlagUsages())
}

// Load => defaults < YAML < .env/env < flags.
// configPath may be ""; if so we auto-discover. args excludes the program name.
func Load(configPath string, fs *pflag.FlagSet, args []string) (Specification, error) {
	var cfg Specification

	// set defaults (lowest precedence)
	setDefaults(&cfg)
	bindFlags(fs, &cfg)

	// config file
	path := configPath
	if path == "" {
		path = configFromArgs(args)
	}
	if path == "" {
		if v := os.Getenv(envPrefix + "_CONFIG"); v != "" {
			path = v
		} else {
			for _, cand := range []string{
				"config/repodoc.yaml",
				"./repodoc.yaml",
			} {
				if fileExists(cand) {
					path = cand
					break
				}
			}
		}
	}

	if path != "" {
		if !fileExists(path) {
			return Specification{}, fmt.Errorf("config file not found: %s", path)
		}
		if err := loadYAML(path, &cfg); err != nil {
			return Specification{}, fmt.Errorf("load yaml %s: %w", path, err)
		}
	}

	// a local .env never overrides variables already set in the process
	if fileExists(".env") {
		if err := godotenv.Load(".env"); err != nil {
			return Specification{}, fmt.Errorf("load .env: %w", err)
		}
	}

	// env overrides config file
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return Specification{}, fmt.Errorf("env override: %w", err)
	}

	// flags override everything
	if err := fs.Parse(args); err != nil {
		return Specification{}, err
	}
	applyChangedFlags(fs, &cfg)

	if err := validate(&cfg); err != nil {
		return Specification{}, err
	}
	return cfg, nil
}

func validate(c *Specification) error {
	if strings.TrimSpace(c.RepoURL) == "" {
		return fmt.Errorf("repository URL is required (--repo or %s_REPO)", envPrefix)
	}
	if strings.TrimSpace(c.LogLevel) == "" {
		c.LogLevel = "info"
	}
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	if !contains(knownProviders, c.Provider) {
		return fmt.Errorf("unsupported provider: %s", c.Provider)
	}
	c.Chunk.Unit = strings.ToLower(strings.TrimSpace(c.Chunk.Unit))
	if !contains(knownChunkUnits, c.Chunk.Unit) {
		return fmt.Errorf("unsupported chunk unit: %s (want one of %s)", c.Chunk.Unit, strings.Join(knownChunkUnits, ", "))
	}
	if c.Chunk.Size <= 0 {
		return fmt.Errorf("chunk size must be positive, got %d", c.Chunk.Size)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", c.Timeout)
	}
	if strings.TrimSpace(c.Output) == "" {
		return fmt.Errorf("output path is required")
	}
	if strings.TrimSpace(c.WorkDir) == "" {
		return fmt.Errorf("clone directory is required")
	}
	// the clone is removed after the run, taking anything inside it along
	if !c.Keep {
		inside, err := within(c.Output, c.WorkDir)
		if err != nil {
			return err
		}
		if inside {
			return fmt.Errorf("output %s is inside clone directory %s, which is removed after the run (move it or pass --keep)", c.Output, c.WorkDir)
		}
	}
	return nil
}

// within reports whether path is dir or lies below it.
func within(path, dir string) (bool, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false, fmt.Errorf("resolve %s: %w", path, err)
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return false, fmt.Errorf("resolve %s: %w", dir, err)
	}
	rel, err := filepath.Rel(absDir, absPath)
	if err != nil {
		return false, nil
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))), nil
}

// ---------- helpers ----------

func loadYAML(path string, into any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(b, into)
}

func fileExists(p string) bool {
	fi, err := os.Stat(p)
	return err == nil && !fi.IsDir()
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// configFromArgs captures --config before flag parsing so config discovery,
// which runs first, can use it.
func configFromArgs(args []string) string {
	for i, a := range args {
		if a == "--config" {
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				return args[i+1]
			}
		} else if strings.HasPrefix(a, "--config=") {
			return strings.SplitN(a, "=", 2)[1]
		}
	}
	return ""
}

func bindFlags(fs *pflag.FlagSet, c *Specification) {
	fs.String("config", "", "Path to config file")

	fs.StringP("repo", "r", c.RepoURL, "Source repository URL (required)")
	fs.StringP("out", "o", c.Output, "Output document path (.docx or .md)")
	fs.StringP("tmp", "t", c.WorkDir, "Local clone directory (removed before cloning)")
	fs.Bool("keep", c.Keep, "Keep the cloned directory after the run")

	fs.String("provider", c.Provider, "Inference provider (ollama|openai|vertexai|stub)")
	fs.String("model", c.Model, "Inference model identifier")
	fs.String("endpoint", c.Endpoint, "Inference endpoint base URL")
	fs.String("api-key", c.APIKey, "Provider API key, if the endpoint needs one")
	fs.String("project-id", c.ProjectID, "Provider project ID (vertexai)")
	fs.String("location", c.Location, "Provider location/region (vertexai)")
	fs.Duration("timeout", c.Timeout, "Per-request inference timeout (0 waits indefinitely)")
	fs.Bool("combine", c.Combine, "Ask the model to merge multi-chunk summaries")

	fs.Int("chunk-size", c.Chunk.Size, "Maximum chunk size, in chunk units")
	fs.String("chunk-unit", c.Chunk.Unit, "Chunk size unit (chars|lines|tokens)")

	fs.StringSlice("exclude-dir", c.Scan.ExcludeDirs, "Directory names pruned at any depth")
	fs.StringSlice("ext", c.Scan.Extensions, "Source file extensions to summarize")
	fs.StringSlice("dependency-file", c.Scan.DependencyFiles, "Dependency/config file names to list")
	fs.Bool("respect-gitignore", c.Scan.RespectGitignore, "Skip paths matched by the repository's root .gitignore")

	fs.String("log-level", c.LogLevel, "Log level (debug|info|warn|error)")
}

func applyChangedFlags(fs *pflag.FlagSet, c *Specification) {
	setStr := func(name string, dst *string) {
		if fs.Changed(name) {
			v, _ := fs.GetString(name)
			*dst = v
		}
	}
	setInt := func(name string, dst *int) {
		if fs.Changed(name) {
			v, _ := fs.GetInt(name)
			*dst = v
		}
	}
	setBool := func(name string, dst *bool) {
		if fs.Changed(name) {
			v, _ := fs.GetBool(name)
			*dst = v
		}
	}
	setSlice := func(name string, dst *[]string) {
		if fs.Changed(name) {
			v, _ := fs.GetStringSlice(name)
			*dst = v
		}
	}

	// (We ignore --config here; it's for discovery.)
	setStr("repo", &c.RepoURL)
	setStr("out", &c.Output)
	setStr("tmp", &c.WorkDir)
	setBool("keep", &c.Keep)

	setStr("provider", &c.Provider)
	setStr("model", &c.Model)
	setStr("endpoint", &c.Endpoint)
	setStr("api-key", &c.APIKey)
	setStr("project-id", &c.ProjectID)
	setStr("location", &c.Location)
	if fs.Changed("timeout") {
		c.Timeout, _ = fs.GetDuration("timeout")
	}
	setBool("combine", &c.Combine)

	setInt("chunk-size", &c.Chunk.Size)
	setStr("chunk-unit", &c.Chunk.Unit)

	setSlice("exclude-dir", &c.Scan.ExcludeDirs)
	setSlice("ext", &c.Scan.Extensions)
	setSlice("dependency-file", &c.Scan.DependencyFiles)
	setBool("respect-gitignore", &c.Scan.RespectGitignore)

	setStr("log-level", &c.LogLevel)
}

func setDefaults(c *Specification) {
	c.Output = "documentation.docx"
	c.WorkDir = "./Code_Repository"
	c.Keep = false
	c.Provider = "ollama"
	c.Model = "gemma:2b"
	c.Endpoint = "http://localhost:11434"
	c.Location = "us-central1"
	c.Timeout = 0
	c.LogLevel = "info"
	c.Chunk.Size = 8000
	c.Chunk.Unit = "chars"
	c.Scan.ExcludeDirs = append([]string(nil), DefaultExcludeDirs...)
	c.Scan.Extensions = append([]string(nil), DefaultExtensions...)
	c.Scan.DependencyFiles = append([]string(nil), DefaultDependencyFiles...)
	c.Scan.RespectGitignore = false
}
