package model

import (
	"strconv"
	"strings"
)

// Settings are the backend's global key/value settings.
type Settings struct {
	// FetchInterval is the backend's mail polling interval in seconds.
	FetchInterval   int
	TargetLang      string
	BaiduAppID      string
	BaiduSecret     string
	DeepseekAPIKey  string
	DeepseekBaseURL string
	DeepseekModel   string
}

// Default setting values, applied when the backend omits a key.
const (
	DefaultFetchInterval   = 300
	DefaultTargetLang      = "zh"
	DefaultDeepseekBaseURL = "https://api.deepseek.com"
	DefaultDeepseekModel   = "deepseek-chat"
)

// SettingsFromMap decodes the backend's string-valued settings map.
func SettingsFromMap(raw map[string]string) Settings {
	s := Settings{
		FetchInterval:   DefaultFetchInterval,
		TargetLang:      DefaultTargetLang,
		DeepseekBaseURL: DefaultDeepseekBaseURL,
		DeepseekModel:   DefaultDeepseekModel,
	}
	if v, ok := raw["fetch_interval"]; ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			s.FetchInterval = n
		}
	}
	if v := raw["target_lang"]; v != "" {
		s.TargetLang = v
	}
	s.BaiduAppID = raw["baidu_appid"]
	s.BaiduSecret = raw["baidu_secret"]
	s.DeepseekAPIKey = raw["deepseek_api_key"]
	if v := raw["deepseek_base_url"]; v != "" {
		s.DeepseekBaseURL = v
	}
	if v := raw["deepseek_model"]; v != "" {
		s.DeepseekModel = v
	}
	return s
}

// SettingsUpdate is the POST /settings payload.
type SettingsUpdate struct {
	FetchInterval   int    `json:"fetch_interval"`
	TargetLang      string `json:"target_lang"`
	BaiduAppID      string `json:"baidu_appid"`
	BaiduSecret     string `json:"baidu_secret"`
	DeepseekAPIKey  string `json:"deepseek_api_key"`
	DeepseekBaseURL string `json:"deepseek_base_url"`
	DeepseekModel   string `json:"deepseek_model"`
}

// Update converts s to its wire payload.
func (s Settings) Update() SettingsUpdate {
	return SettingsUpdate{
		FetchInterval:   s.FetchInterval,
		TargetLang:      s.TargetLang,
		BaiduAppID:      s.BaiduAppID,
		BaiduSecret:     s.BaiduSecret,
		DeepseekAPIKey:  s.DeepseekAPIKey,
		DeepseekBaseURL: s.DeepseekBaseURL,
		DeepseekModel:   s.DeepseekModel,
	}
}

// MailAccount is the IMAP/SMTP account the backend fetches from and sends with.
type MailAccount struct {
	Email    string `json:"email"`
	IMAPHost string `json:"imap_host"`
	IMAPPort int    `json:"imap_port"`
	SMTPHost string `json:"smtp_host"`
	SMTPPort int    `json:"smtp_port"`
	Username string `json:"username"`
	Password string `json:"password"`
	UseSSL   bool   `json:"use_ssl"`
}

// Login returns the IMAP login name: Username, else Email.
func (a MailAccount) Login() string {
	if a.Username != "" {
		return a.Username
	}
	return a.Email
}

// SettingsBundle is everything GET /settings returns.
type SettingsBundle struct {
	Settings Settings
	Account  *MailAccount
}

// NeedsSetup reports whether the first-run wizard should be shown: the
// mail account has no address or no AI key is configured.
func (b SettingsBundle) NeedsSetup() bool {
	if b.Account == nil || strings.TrimSpace(b.Account.Email) == "" {
		return true
	}
	return strings.TrimSpace(b.Settings.DeepseekAPIKey) == ""
}
