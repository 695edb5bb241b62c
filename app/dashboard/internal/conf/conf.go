package conf

type Bootstrap struct {
	Server    *Server    `json:"server"`
	Data      *Data      `json:"data"`
	Auth      *Auth      `json:"auth"`
	Feed      *Feed      `json:"feed"`
	Assistant *Assistant `json:"assistant"`
	Log       *Log       `json:"log"`
}

type Server struct {
	Http *HTTP `json:"http"`
}

type HTTP struct {
	Addr    string `json:"addr"`
	Timeout string `json:"timeout"`
}

type Data struct {
	Database *Database `json:"database"`
}

type Database struct {
	Driver string `json:"driver"`
	Source string `json:"source"`
}

// Auth 身份提供方与会话配置
type Auth struct {
	JwtKey        string `json:"jwt_key"`
	Domain        string `json:"domain"`
	ClientId      string `json:"client_id"`
	ClientSecret  string `json:"client_secret"`
	BaseUrl       string `json:"base_url"`
	SecureCookies bool   `json:"secure_cookies"`
}

// Feed 保单数据源
type Feed struct {
	Source        string `json:"source"`
	HeatmapSource string `json:"heatmap_source"`
	Interval      string `json:"interval"`
	Timeout       string `json:"timeout"`
}

// Assistant 承保助手使用的模型
type Assistant struct {
	Provider    string  `json:"provider"`
	BaseUrl     string  `json:"base_url"`
	ApiKey      string  `json:"api_key"`
	Model       string  `json:"model"`
	Temperature float32 `json:"temperature"`
	MaxTokens   int32   `json:"max_tokens"`
	Rpm         int32   `json:"rpm"`
	Qps         int32   `json:"qps"`
	Guidelines  string  `json:"guidelines"`
}

type Log struct {
	Level string `json:"level"`
	File  string `json:"file"`
}
