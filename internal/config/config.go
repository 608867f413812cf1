package config

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Mongo struct {
	Enabled  bool   `yaml:"enabled" env-default:"false"`
	Host     string `yaml:"host" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env-default:"27017"`
	User     string `yaml:"user" env-default:"admin"`
	Password string `yaml:"password" env:"MONGO_PASSWORD" env-default:"pass"`
	Database string `yaml:"database" env-default:"whatsgrapp"`
}

type Redis struct {
	Enabled  bool          `yaml:"enabled" env-default:"false"`
	Addr     string        `yaml:"addr" env-default:"127.0.0.1:6379"`
	Password string        `yaml:"password" env:"REDIS_PASSWORD" env-default:""`
	DB       int           `yaml:"db" env-default:"0"`
	Prefix   string        `yaml:"prefix" env-default:"whatsgrapp:"`
	LockTTL  time.Duration `yaml:"lock_ttl" env-default:"30s"`
	LockWait time.Duration `yaml:"lock_wait" env-default:"15s"`
}

type WhatsApp struct {
	AccessToken   string `yaml:"access_token" env:"WHATSAPP_ACCESS_TOKEN" env-default:""`
	VerifyToken   string `yaml:"verify_token" env:"WHATSAPP_VERIFY_TOKEN" env-default:""`
	AppSecret     string `yaml:"app_secret" env:"WHATSAPP_APP_SECRET" env-default:""`
	PhoneNumberID string `yaml:"phone_number_id" env-default:""`
	RatePerMinute int    `yaml:"rate_per_minute" env-default:"30"`
	RateBurst     int    `yaml:"rate_burst" env-default:"5"`
}

type Chat struct {
	AppURL            string        `yaml:"app_url" env:"APP_URL" env-default:"http://localhost:3000"`
	SessionTTL        time.Duration `yaml:"session_ttl" env-default:"24h"`
	SideEffectTimeout time.Duration `yaml:"side_effect_timeout" env-default:"10s"`
}

type Config struct {
	Env      string `yaml:"env" env-default:"local"`
	Telegram struct {
		ApiKey  string `yaml:"api_key" env:"TELEGRAM_API_KEY" env-default:""`
		AdminId int64  `yaml:"admin_id" env-default:"0"`
		BotName string `yaml:"bot_name" env-default:"WhatsGrappBot"`
		Enabled bool   `yaml:"enabled" env-default:"false"`
	} `yaml:"telegram"`
	OpenAI struct {
		ApiKey string `yaml:"api_key" env:"OPENAI_API_KEY" env-default:""`
		Model  string `yaml:"model" env-default:"gpt-4o-mini"`
	} `yaml:"openai"`
	Gemini struct {
		ApiKey string `yaml:"api_key" env:"GEMINI_API_KEY" env-default:""`
		Model  string `yaml:"model" env-default:"gemini-2.0-flash"`
	} `yaml:"gemini"`
	Mongo    Mongo    `yaml:"mongo"`
	Redis    Redis    `yaml:"redis"`
	WhatsApp WhatsApp `yaml:"whatsapp"`
	Chat     Chat     `yaml:"chat"`
	Cleanup  struct {
		Schedule string `yaml:"schedule" env-default:"@every 1h"`
	} `yaml:"cleanup"`
	Listen struct {
		BindIP string `yaml:"bind_ip" env-default:"127.0.0.1"`
		Port   string `yaml:"port" env-default:"9100"`
		ApiKey string `yaml:"key" env:"LISTEN_API_KEY" env-default:""`
	} `yaml:"listen"`
}

var instance *Config
var once sync.Once

func MustLoad(path string) *Config {
	var err error
	once.Do(func() {
		instance = &Config{}
		if err = cleanenv.ReadConfig(path, instance); err != nil {
			desc, _ := cleanenv.GetDescription(instance, nil)
			err = fmt.Errorf("%s; %s", err, desc)
			instance = nil
			log.Fatal(err)
		}
	})
	return instance
}

// Defaults returns a config populated from defaults and the environment only,
// for the local chat harness.
func Defaults() (*Config, error) {
	conf := &Config{}
	if err := cleanenv.ReadEnv(conf); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}
	return conf, nil
}
