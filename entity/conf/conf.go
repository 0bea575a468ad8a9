package conf

import (
	"fmt"
	"os"
	"sync"

	"github.com/HildaM/logs/slog"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const defaultConfigPath = "config.yaml"

var (
	// 配置读写锁，确保并发安全
	configMu sync.RWMutex
	// 文件提供者
	f *file.File
	// 缓存的配置实例
	appConf *AppConfig
	// 配置校验器
	validate = validator.New()
)

// envKeys 环境变量到配置键的映射，未列出的环境变量不参与覆盖
var envKeys = map[string]string{
	"OPENAI_API_KEY":  "model.default_model.api_key",
	"OPENAI_BASE_URL": "model.default_model.base_url",
	"TAVILY_API_KEY":  "search.tavily.api_key",
	"funny_prompt":    "setting.tone_prompt",
	"REDIS_ADDR":      "session.redis.addr",
	"EVIDENCE_DIR":    "evidence.dir",
	"POLICY_DIR":      "rag.policy_dir",
}

// Init 初始化配置
func Init() error {
	// .env 不存在时忽略
	_ = godotenv.Load()

	path := ConfigPath()
	cfg, err := Load(path)
	if err != nil {
		return fmt.Errorf("Init config failed, load config err: %v", err)
	}

	configMu.Lock()
	appConf = cfg
	f = file.Provider(path)
	configMu.Unlock()

	// 启动配置文件监听
	startConfigWatch(path)

	// 初始化日志
	if err := slog.InitFile(cfg.Setting.LogFile, slog.WithLevel(cfg.Setting.LogLevel), slog.WithColor(false)); err != nil {
		return fmt.Errorf("Init log failed, err: %+v", err)
	}

	slog.Info("Init config: server = %+v, model = %s, search = %s, session = %s",
		cfg.Server, cfg.Model.DefaultModel.ModelID, cfg.Search.Provider, cfg.Session.Backend)
	return nil
}

// ConfigPath 配置文件路径，优先读取 CONFIG_PATH
func ConfigPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return defaultConfigPath
}

// Load 按 yaml 文件、环境变量的顺序加载配置，并补齐默认值后校验
func Load(path string) (*AppConfig, error) {
	k := koanf.New(".")

	// 从配置文件加载
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// 环境变量覆盖，空值不覆盖
	envProvider := env.ProviderWithValue("", ".", func(key, value string) (string, interface{}) {
		target, ok := envKeys[key]
		if !ok || value == "" {
			return "", nil
		}
		return target, value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load env: %w", err)
	}

	// 解析配置到结构体，使用 yaml 标签
	var config AppConfig
	if err := k.UnmarshalWithConf("", &config, koanf.UnmarshalConf{Tag: "yaml"}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	// 未配置的重叠长度取默认值，显式配置的 0 保留
	if !k.Exists("rag.chunk_overlap") {
		config.RAG.ChunkOverlap = -1
	}
	applyDefaults(&config)

	if err := validate.Struct(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &config, nil
}

// GetCfg 获取配置
func GetCfg() *AppConfig {
	configMu.RLock()
	defer configMu.RUnlock()
	return appConf
}

// startConfigWatch 启动配置文件监听
func startConfigWatch(path string) {
	if f == nil {
		slog.Error("startConfigWatch failed, file provider not initialized")
		return
	}

	// 监听文件变化并在变化时重新加载配置
	err := f.Watch(func(event interface{}, err error) {
		if err != nil {
			slog.Error("startConfigWatch failed, config file watch err = %+v", err)
			return
		}

		slog.Info("Config file changed. Reloading...")
		config, err := Load(path)
		if err != nil {
			// 保留旧配置
			slog.Error("startConfigWatch failed, reload config err = %+v", err)
			return
		}

		configMu.Lock()
		appConf = config
		configMu.Unlock()
		slog.Info("Config reloaded, model = %s", config.Model.DefaultModel.ModelID)
	})
	if err != nil {
		slog.Error("startConfigWatch failed, watch err = %+v", err)
	}
}
