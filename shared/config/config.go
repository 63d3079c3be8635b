package config

import (
	"os"
	"path"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Public  Public
	Private Private
}

// Duration allows "60s" style values in yaml, which yaml.v2 cannot decode
// into time.Duration directly.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

type Public struct {
	LogLevel string `yaml:"log_level"`
	LogJSON  bool   `yaml:"log_json"`

	MaxUploadSizeBytes       int64    `yaml:"max_upload_size_bytes"` // per interactive upload, 10 MiB recommended
	AllowedImageMimeTypes    []string `yaml:"allowed_image_mime_types"`
	AllowedDocumentMimeTypes []string `yaml:"allowed_document_mime_types"`

	Image Image `yaml:"image"`
	Pdf   Pdf   `yaml:"pdf"`

	S3 S3 `yaml:"s3"`
	Pg Pg `yaml:"pg"`

	BlobGCInterval  Duration `yaml:"blob_gc_interval"`
	BlobGCSafetyAge Duration `yaml:"blob_gc_safety_age"` // minimum blob age before it may be collected
}

type Image struct {
	MaxWidth         int `yaml:"max_width"`
	MaxHeight        int `yaml:"max_height"`
	ThumbnailSize    int `yaml:"thumbnail_size"` // square, center-cropped
	JpegQuality      int `yaml:"jpeg_quality"`
	ThumbnailQuality int `yaml:"thumbnail_quality"`
}

type Pdf struct {
	SkipThresholdBytes int64    `yaml:"skip_threshold_bytes"` // below this the external round trip is not worth it
	PollInterval       Duration `yaml:"poll_interval"`
	PollBudget         Duration `yaml:"poll_budget"` // overall wall clock for one conversion job
}

type S3 struct {
	Region   string `yaml:"region"`
	Bucket   string `yaml:"bucket"`
	Endpoint string `yaml:"endpoint"` // empty for AWS, set for MinIO/R2 style endpoints
}

type Pg struct {
	MaxOpenConns    int      `yaml:"max_open_conns"`
	MaxIdleConns    int      `yaml:"max_idle_conns"`
	ConnMaxLifetime Duration `yaml:"conn_max_lifetime"`
}

type Private struct {
	JwtKey string `yaml:"jwt_key"`

	PgCreds PgCreds `yaml:"pg"`

	S3AccessKey string `yaml:"s3_access_key"`
	S3SecretKey string `yaml:"s3_secret_key"`

	// Conversion service credentials. Leaving the api key empty disables
	// remote PDF optimization entirely; PDFs then pass through unmodified.
	ConversionBaseURL string `yaml:"conversion_base_url"`
	ConversionApiKey  string `yaml:"conversion_api_key"`
}

type PgCreds struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Dbname   string `yaml:"dbname"`
}

// ConversionConfigured reports whether the external conversion service
// capability is available. When false the PDF optimizer must never be invoked.
func (c *Config) ConversionConfigured() bool {
	return c.Private.ConversionApiKey != "" && c.Private.ConversionBaseURL != ""
}

func (c *Config) JwtKey() string {
	return c.Private.JwtKey
}

func mustLoadPath(configPath string, output interface{}) {
	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		panic("can't read config file")
	}

	err = yaml.Unmarshal(configFile, output)
	if err != nil {
		panic("can't unmarshal config file")
	}
}

// applyEnvOverrides lets deployment environments inject secrets without
// writing them into private.yaml. Pairs with godotenv.Load in main.
func applyEnvOverrides(p *Private) {
	if v := os.Getenv("HOMEDGER_JWT_KEY"); v != "" {
		p.JwtKey = v
	}
	if v := os.Getenv("HOMEDGER_S3_ACCESS_KEY"); v != "" {
		p.S3AccessKey = v
	}
	if v := os.Getenv("HOMEDGER_S3_SECRET_KEY"); v != "" {
		p.S3SecretKey = v
	}
	if v := os.Getenv("HOMEDGER_CONVERSION_API_KEY"); v != "" {
		p.ConversionApiKey = v
	}
	if v := os.Getenv("HOMEDGER_CONVERSION_BASE_URL"); v != "" {
		p.ConversionBaseURL = v
	}
}

func MustLoad(configFolder string) *Config {
	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)
	applyEnvOverrides(&private)

	return &Config{public, private}
}
