package config

import (
	"encoding/xml"
	"io"
	"os"
	"sync"
)

var (
	cfg  *APIConfig
	once sync.Once
)

// APIConfig represents the root element of config.xml. Structure lives in
// the XML file; secrets (DB password, tokens, API keys) come from the
// environment and are resolved through the helpers below.
type APIConfig struct {
	XMLName        xml.Name             `xml:"API"`
	RequestDump    bool                 `xml:"REQUEST_DUMP,attr"`
	Context        ContextConfig        `xml:"CONTEXT"`
	Authentication AuthenticationConfig `xml:"AUTHENTICATION"`
	Pagination     PaginationConfig     `xml:"PAGINATION"`
	DB             DBConfig             `xml:"DB"`
	THIRD_PARTY    ThirdPartyConfig     `xml:"THIRD_PARTY"`
}

// ContextConfig holds basic server settings.
type ContextConfig struct {
	Port     int    `xml:"PORT"`
	Host     string `xml:"HOST"`
	Path     string `xml:"PATH"`
	TimeZone string `xml:"TIME_ZONE"`
}

// ThirdPartyConfig holds settings for the AI and speech collaborators.
type ThirdPartyConfig struct {
	LLMProvider string `xml:"LLM_PROVIDER"` // ollama or openai
	OllamaURL   string `xml:"OLLAMA_URL"`
	OllamaModel string `xml:"OLLAMA_MODEL"`
	OpenAIModel string `xml:"OPENAI_MODEL"`
	TTSURL      string `xml:"TTS_URL"`
}

// AuthenticationConfig holds authentication settings.
type AuthenticationConfig struct {
	EnableTokenAuth bool `xml:"ENABLE_TOKEN_AUTH"`
	SessionTimeout  int  `xml:"SESSION_TIMEOUT"` // minutes a parked practice session survives
}

// PaginationConfig holds pagination settings.
type PaginationConfig struct {
	PageSize int `xml:"PAGE_SIZE"`
}

// DBConfig holds database connection settings.
type DBConfig struct {
	Host     string       `xml:"HOST"`
	Port     int          `xml:"PORT"`
	SSLMode  string       `xml:"SSL_MODE"`
	Names    DBNames      `xml:"NAMES"`
	Username string       `xml:"USERNAME"`
	Password DBPassword   `xml:"PASSWORD"`
	Pool     DBPoolConfig `xml:"POOL"`
}

// DBNames holds the names defined in the DB section.
type DBNames struct {
	WORDSPARK string `xml:"WORDSPARK,attr"`
}

// DBPassword holds password resolution details. TYPE="ENV" means the value
// names the environment variable carrying the password.
type DBPassword struct {
	Type  string `xml:"TYPE,attr"`
	Value string `xml:",chardata"`
}

// DBPoolConfig holds database connection pooling settings.
type DBPoolConfig struct {
	MaxOpenConns    int `xml:"MAX_OPEN_CONNS"`
	MaxIdleConns    int `xml:"MAX_IDLE_CONNS"`
	ConnMaxLifetime int `xml:"CONN_MAX_LIFETIME"`
}

// Resolve returns the actual password.
func (p DBPassword) Resolve() string {
	if p.Type == "ENV" {
		return os.Getenv(p.Value)
	}
	return p.Value
}

// HFToken returns the Hugging Face API token from the environment.
func (t ThirdPartyConfig) HFToken() string {
	return os.Getenv("HF_TOKEN")
}

// OpenAIKey returns the OpenAI API key from the environment.
func (t ThirdPartyConfig) OpenAIKey() string {
	return os.Getenv("OPENAI_API_KEY")
}

// RedisAddr returns the Redis address, empty when Redis is not configured.
// A set REDIS_ADDR switches the practice session store to Redis.
func RedisAddr() string {
	return os.Getenv("REDIS_ADDR")
}

// LoadConfig loads and parses the XML configuration from the given file.
func LoadConfig(xmlPath string) (*APIConfig, error) {
	var loadErr error
	once.Do(func() {
		f, err := os.Open(xmlPath)
		if err != nil {
			loadErr = err
			return
		}
		defer f.Close()

		data, err := io.ReadAll(f)
		if err != nil {
			loadErr = err
			return
		}

		var newCfg APIConfig
		if err := xml.Unmarshal(data, &newCfg); err != nil {
			loadErr = err
			return
		}

		cfg = &newCfg
	})

	if cfg == nil {
		if loadErr != nil {
			return nil, loadErr
		}
		return nil, os.ErrInvalid
	}
	return cfg, nil
}

// GetConfig returns the loaded configuration.
func GetConfig() *APIConfig {
	return cfg
}
