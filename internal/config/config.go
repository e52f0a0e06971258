package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

const (
	ProviderArk    = "ark"
	ProviderOpenAI = "openai"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server ServerConfig
	AI     AIConfig
	Log    LogConfig
}

// Load 从环境变量加载配置，MEMORY_CONFIG 指向的 TOML 文件提供默认值。
func Load() (*Config, error) {
	return LoadFile(strings.TrimSpace(os.Getenv("MEMORY_CONFIG")))
}

// LoadFile reads defaults from the TOML file at path (skipped when empty),
// then applies environment overrides.
func LoadFile(path string) (*Config, error) {
	var file fileConfig
	if path != "" {
		if _, err := toml.DecodeFile(path, &file); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	server, err := loadServerConfig(file.Server)
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig(file.AI)
	if err != nil {
		return nil, err
	}

	logCfg, err := loadLogConfig(file.Log)
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, AI: ai, Log: logCfg}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr           string
	AllowedOrigins []string
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig(file fileServer) (ServerConfig, error) {
	port := stringSetting("PORT", file.Port, "8080")

	origins := file.AllowedOrigins
	if raw := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS")); raw != "" {
		origins = splitList(raw)
	}
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	addr, err := listenAddr(port)
	if err != nil {
		return ServerConfig{}, err
	}
	return ServerConfig{Addr: addr, AllowedOrigins: origins}, nil
}

func listenAddr(port string) (string, error) {
	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8080" 或 "127.0.0.1:8080"。
		return port, nil
	}
	if strings.Contains(port, " ") {
		return "", fmt.Errorf("invalid PORT value: %q", port)
	}
	return ":" + port, nil
}

// AIConfig 描述大模型相关配置。
type AIConfig struct {
	Provider  string
	APIKey    string
	AccessKey string
	SecretKey string
	Model     string
	BaseURL   string
	Region    string
	OpenAI    OpenAIConfig

	StreamResponse bool

	ExtractionTemperature float32
	ExtractionMaxTokens   int
	ResponseMaxTokens     int
}

// OpenAIConfig 描述 OpenAI 兼容接口的配置。
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Enabled 表示当前 provider 是否提供了必需的密钥。
func (c AIConfig) Enabled() bool {
	if c.Provider == ProviderOpenAI {
		return c.OpenAI.APIKey != "" && c.OpenAI.Model != ""
	}
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel 使用配置创建一个 Ark 模型实例。采样参数按调用传入。
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("Ark 凭证或模型配置缺失，至少提供 ARK_API_KEY + Model 或 AK/SK 组合")
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:   c.BaseURL,
		Region:    c.Region,
		APIKey:    c.APIKey,
		AccessKey: c.AccessKey,
		SecretKey: c.SecretKey,
		Model:     c.Model,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig(file fileAI) (AIConfig, error) {
	provider := strings.ToLower(stringSetting("LLM_PROVIDER", file.Provider, ProviderArk))
	if provider != ProviderArk && provider != ProviderOpenAI {
		return AIConfig{}, fmt.Errorf("invalid LLM_PROVIDER value %q", provider)
	}

	stream, err := boolSetting("ARK_STREAM", file.Stream, true)
	if err != nil {
		return AIConfig{}, err
	}

	temperature, err := float32Setting("EXTRACTION_TEMPERATURE", file.Extraction.Temperature, 0.3)
	if err != nil {
		return AIConfig{}, err
	}
	if temperature <= 0 || temperature > 2 {
		return AIConfig{}, fmt.Errorf("EXTRACTION_TEMPERATURE must be in (0, 2], got %v", temperature)
	}

	extractionTokens, err := intSetting("EXTRACTION_MAX_TOKENS", file.Extraction.MaxTokens, 4096)
	if err != nil {
		return AIConfig{}, err
	}
	responseTokens, err := intSetting("RESPONSE_MAX_TOKENS", file.Response.MaxTokens, 1024)
	if err != nil {
		return AIConfig{}, err
	}
	if extractionTokens < 1 || responseTokens < 1 {
		return AIConfig{}, fmt.Errorf("token limits must be positive")
	}

	return AIConfig{
		Provider:  provider,
		APIKey:    stringSetting("ARK_API_KEY", file.Ark.APIKey, ""),
		AccessKey: stringSetting("ARK_ACCESS_KEY", file.Ark.AccessKey, ""),
		SecretKey: stringSetting("ARK_SECRET_KEY", file.Ark.SecretKey, ""),
		Model:     stringSetting("Model", file.Ark.Model, ""),
		BaseURL:   stringSetting("ARK_BASE_URL", file.Ark.BaseURL, "https://ark.cn-beijing.volces.com/api/v3"),
		Region:    stringSetting("ARK_REGION", file.Ark.Region, "cn-beijing"),
		OpenAI: OpenAIConfig{
			APIKey:  stringSetting("OPENAI_API_KEY", file.OpenAI.APIKey, ""),
			BaseURL: stringSetting("OPENAI_BASE_URL", file.OpenAI.BaseURL, ""),
			Model:   stringSetting("OPENAI_MODEL", file.OpenAI.Model, ""),
		},
		StreamResponse:        stream,
		ExtractionTemperature: temperature,
		ExtractionMaxTokens:   extractionTokens,
		ResponseMaxTokens:     responseTokens,
	}, nil
}

// LogConfig 描述日志配置。
type LogConfig struct {
	Level log.Level
}

func loadLogConfig(file fileLog) (LogConfig, error) {
	raw := stringSetting("LOG_LEVEL", file.Level, "info")
	level, err := log.ParseLevel(strings.ToLower(raw))
	if err != nil {
		return LogConfig{}, fmt.Errorf("invalid LOG_LEVEL value %q: %w", raw, err)
	}
	return LogConfig{Level: level}, nil
}

// fileConfig mirrors the TOML layout:
//
//	[server]
//	port = "8080"
//	allowed_origins = ["http://localhost:3000"]
//
//	[ai]
//	provider = "ark"
//	[ai.ark]
//	model = "doubao-seed-1-6"
//	[ai.extraction]
//	temperature = 0.3
type fileConfig struct {
	Server fileServer `toml:"server"`
	AI     fileAI     `toml:"ai"`
	Log    fileLog    `toml:"log"`
}

type fileServer struct {
	Port           string   `toml:"port"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

type fileAI struct {
	Provider string `toml:"provider"`
	Stream   *bool  `toml:"stream"`
	Ark      struct {
		APIKey    string `toml:"api_key"`
		AccessKey string `toml:"access_key"`
		SecretKey string `toml:"secret_key"`
		Model     string `toml:"model"`
		BaseURL   string `toml:"base_url"`
		Region    string `toml:"region"`
	} `toml:"ark"`
	OpenAI struct {
		APIKey  string `toml:"api_key"`
		BaseURL string `toml:"base_url"`
		Model   string `toml:"model"`
	} `toml:"openai"`
	Extraction struct {
		Temperature *float32 `toml:"temperature"`
		MaxTokens   *int     `toml:"max_tokens"`
	} `toml:"extraction"`
	Response struct {
		MaxTokens *int `toml:"max_tokens"`
	} `toml:"response"`
}

type fileLog struct {
	Level string `toml:"level"`
}

func stringSetting(key, fileValue, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	if value := strings.TrimSpace(fileValue); value != "" {
		return value
	}
	return defaultValue
}

func boolSetting(key string, fileValue *bool, defaultValue bool) (bool, error) {
	val, err := parseOptionalBoolEnv(key)
	if err != nil {
		return false, err
	}
	switch {
	case val != nil:
		return *val, nil
	case fileValue != nil:
		return *fileValue, nil
	default:
		return defaultValue, nil
	}
}

func intSetting(key string, fileValue *int, defaultValue int) (int, error) {
	val, err := parseOptionalIntEnv(key)
	if err != nil {
		return 0, err
	}
	switch {
	case val != nil:
		return *val, nil
	case fileValue != nil:
		return *fileValue, nil
	default:
		return defaultValue, nil
	}
}

func float32Setting(key string, fileValue *float32, defaultValue float32) (float32, error) {
	val, err := parseOptionalFloat32Env(key)
	if err != nil {
		return 0, err
	}
	switch {
	case val != nil:
		return *val, nil
	case fileValue != nil:
		return *fileValue, nil
	default:
		return defaultValue, nil
	}
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func lookupEnv(key string) (string, bool) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	value := strings.TrimSpace(raw)
	return value, value != ""
}

func parseOptionalBoolEnv(key string) (*bool, error) {
	value, ok := lookupEnv(key)
	if !ok {
		return nil, nil
	}

	val, err := strconv.ParseBool(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	value, ok := lookupEnv(key)
	if !ok {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalFloat32Env(key string) (*float32, error) {
	value, ok := lookupEnv(key)
	if !ok {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	result := float32(val)
	return &result, nil
}
