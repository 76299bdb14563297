package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// envPrefix префикс переменных окружения
const envPrefix = "SYSHEALTH_"

// Config содержит всю конфигурацию приложения
type Config struct {
	// Сбор метрик
	Interval    time.Duration `yaml:"interval"`
	TickTimeout time.Duration `yaml:"tick_timeout"`
	Source      string        `yaml:"source"`
	DiskIO      bool          `yaml:"disk_io"`

	// Общие настройки
	LogLevel string `yaml:"log_level"`

	// HTTP сервер
	ListenAddr     string        `yaml:"listen_addr"`
	WSPollInterval time.Duration `yaml:"ws_poll_interval"`

	// Отчет
	ReportTitle   string `yaml:"report_title"`
	ReportMembers string `yaml:"report_members"`

	// Zabbix sender
	ZabbixEnable     bool          `yaml:"zabbix_enable"`
	ZabbixServer     string        `yaml:"zabbix_server"`
	ZabbixPort       int           `yaml:"zabbix_port"`
	ZabbixHost       string        `yaml:"zabbix_host"`
	ZabbixInterval   time.Duration `yaml:"zabbix_interval"`
	ZabbixTimeout    time.Duration `yaml:"zabbix_timeout"`
	MaxRetries       int           `yaml:"max_retries"`
	RetryBackoffBase time.Duration `yaml:"retry_backoff_base"`

	// Профилирование
	ProfileEnable  bool   `yaml:"profile"`
	ProfileCPUFile string `yaml:"profile_cpu"`
	ProfileMemFile string `yaml:"profile_mem"`
	ProfileTime    int    `yaml:"profile_time"`
}

// NewConfig создает новую конфигурацию с значениями по умолчанию
func NewConfig() *Config {
	hostname, err := os.Hostname()
	if err != nil || hostname == "" {
		hostname = "syshealth-host"
	}

	return &Config{
		Interval:         5 * time.Second,
		TickTimeout:      0,
		Source:           "gopsutil",
		DiskIO:           false,
		LogLevel:         "info",
		ListenAddr:       ":8080",
		WSPollInterval:   time.Second,
		ReportTitle:      "syshealth",
		ReportMembers:    "",
		ZabbixEnable:     false,
		ZabbixServer:     "localhost",
		ZabbixPort:       10051,
		ZabbixHost:       hostname,
		ZabbixInterval:   30 * time.Second,
		ZabbixTimeout:    10 * time.Second,
		MaxRetries:       3,
		RetryBackoffBase: 1 * time.Second,
		ProfileEnable:    false,
		ProfileCPUFile:   "",
		ProfileMemFile:   "",
		ProfileTime:      30,
	}
}

// Load загружает конфигурацию: файл, затем переменные окружения, затем флаги
func (c *Config) Load(cmd *cobra.Command) error {
	// Файл конфигурации, если указан
	path := os.Getenv(envPrefix + "CONFIG")
	if f := cmd.Flags().Lookup("config"); f != nil && f.Changed {
		path = f.Value.String()
	}
	if path != "" {
		if err := c.LoadFile(path); err != nil {
			return err
		}
	}

	if err := c.loadFromEnv(); err != nil {
		return err
	}

	// Флаги имеют наивысший приоритет
	if err := c.loadFromFlags(cmd); err != nil {
		return err
	}

	return c.Validate()
}

// LoadFile читает YAML файл поверх текущих значений
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return nil
}

// loadFromFlags применяет только явно заданные флаги
func (c *Config) loadFromFlags(cmd *cobra.Command) error {
	flags := cmd.Flags()
	changed := func(name string) bool {
		f := flags.Lookup(name)
		return f != nil && f.Changed
	}

	if changed("interval") {
		c.Interval, _ = flags.GetDuration("interval")
	}
	if changed("tick-timeout") {
		c.TickTimeout, _ = flags.GetDuration("tick-timeout")
	}
	if changed("source") {
		c.Source, _ = flags.GetString("source")
	}
	if changed("disk-io") {
		c.DiskIO, _ = flags.GetBool("disk-io")
	}
	if changed("log-level") {
		c.LogLevel, _ = flags.GetString("log-level")
	}
	if changed("listen") {
		c.ListenAddr, _ = flags.GetString("listen")
	}
	if changed("ws-poll-interval") {
		c.WSPollInterval, _ = flags.GetDuration("ws-poll-interval")
	}
	if changed("title") {
		c.ReportTitle, _ = flags.GetString("title")
	}
	if changed("members") {
		c.ReportMembers, _ = flags.GetString("members")
	}
	if changed("zabbix") {
		c.ZabbixEnable, _ = flags.GetBool("zabbix")
	}
	if changed("zabbix-server") {
		v, _ := flags.GetString("zabbix-server")
		host, port, err := splitServer(v, c.ZabbixPort)
		if err != nil {
			return err
		}
		c.ZabbixServer, c.ZabbixPort = host, port
	}
	if changed("zabbix-host") {
		c.ZabbixHost, _ = flags.GetString("zabbix-host")
	}
	if changed("zabbix-interval") {
		c.ZabbixInterval, _ = flags.GetDuration("zabbix-interval")
	}
	if changed("zabbix-timeout") {
		c.ZabbixTimeout, _ = flags.GetDuration("zabbix-timeout")
	}
	if changed("max-retries") {
		c.MaxRetries, _ = flags.GetInt("max-retries")
	}
	if changed("retry-backoff") {
		c.RetryBackoffBase, _ = flags.GetDuration("retry-backoff")
	}
	if changed("profile") {
		c.ProfileEnable, _ = flags.GetBool("profile")
	}
	if changed("profile-cpu") {
		c.ProfileCPUFile, _ = flags.GetString("profile-cpu")
	}
	if changed("profile-mem") {
		c.ProfileMemFile, _ = flags.GetString("profile-mem")
	}
	if changed("profile-time") {
		c.ProfileTime, _ = flags.GetInt("profile-time")
	}

	return nil
}

// loadFromEnv загружает конфигурацию из переменных окружения
func (c *Config) loadFromEnv() error {
	var err error
	duration := func(name string, dst *time.Duration) {
		v := os.Getenv(envPrefix + name)
		if v == "" || err != nil {
			return
		}
		d, e := parseDuration(v)
		if e != nil {
			err = fmt.Errorf("invalid %s%s: %w", envPrefix, name, e)
			return
		}
		*dst = d
	}
	boolean := func(name string, dst *bool) {
		v := os.Getenv(envPrefix + name)
		if v == "" || err != nil {
			return
		}
		b, e := strconv.ParseBool(v)
		if e != nil {
			err = fmt.Errorf("invalid %s%s: %w", envPrefix, name, e)
			return
		}
		*dst = b
	}
	integer := func(name string, dst *int) {
		v := os.Getenv(envPrefix + name)
		if v == "" || err != nil {
			return
		}
		n, e := strconv.Atoi(v)
		if e != nil {
			err = fmt.Errorf("invalid %s%s: %w", envPrefix, name, e)
			return
		}
		*dst = n
	}
	str := func(name string, dst *string) {
		if v := os.Getenv(envPrefix + name); v != "" {
			*dst = v
		}
	}

	duration("INTERVAL", &c.Interval)
	duration("TICK_TIMEOUT", &c.TickTimeout)
	str("SOURCE", &c.Source)
	boolean("DISK_IO", &c.DiskIO)
	str("LOG_LEVEL", &c.LogLevel)
	str("LISTEN_ADDR", &c.ListenAddr)
	duration("WS_POLL_INTERVAL", &c.WSPollInterval)
	str("REPORT_TITLE", &c.ReportTitle)
	str("REPORT_MEMBERS", &c.ReportMembers)
	boolean("ZABBIX_ENABLE", &c.ZabbixEnable)
	if v := os.Getenv(envPrefix + "ZABBIX_SERVER"); v != "" && err == nil {
		host, port, e := splitServer(v, c.ZabbixPort)
		if e != nil {
			err = fmt.Errorf("invalid %sZABBIX_SERVER: %w", envPrefix, e)
		} else {
			c.ZabbixServer, c.ZabbixPort = host, port
		}
	}
	str("ZABBIX_HOST", &c.ZabbixHost)
	duration("ZABBIX_INTERVAL", &c.ZabbixInterval)
	duration("ZABBIX_TIMEOUT", &c.ZabbixTimeout)
	integer("MAX_RETRIES", &c.MaxRetries)
	duration("RETRY_BACKOFF_BASE", &c.RetryBackoffBase)
	boolean("PROFILE_ENABLE", &c.ProfileEnable)
	str("PROFILE_CPU_FILE", &c.ProfileCPUFile)
	str("PROFILE_MEM_FILE", &c.ProfileMemFile)
	integer("PROFILE_TIME", &c.ProfileTime)

	return err
}

// parseDuration принимает "5s" или число секунд
func parseDuration(v string) (time.Duration, error) {
	if sec, err := strconv.Atoi(v); err == nil {
		return time.Duration(sec) * time.Second, nil
	}
	return time.ParseDuration(v)
}

// splitServer разбирает "host" или "host:port"
func splitServer(v string, defaultPort int) (string, int, error) {
	host, portStr, found := strings.Cut(v, ":")
	if !found {
		return v, defaultPort, nil
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid zabbix server port %q: %w", portStr, err)
	}
	return host, port, nil
}

// Validate проверяет корректность конфигурации
func (c *Config) Validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("interval must be positive")
	}
	if c.TickTimeout < 0 {
		return fmt.Errorf("tick timeout must not be negative")
	}
	if c.Source != "gopsutil" && c.Source != "sysinfo" {
		return fmt.Errorf("unknown metrics source: %s", c.Source)
	}

	// Проверяем уровень логирования
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}

	if c.ListenAddr == "" {
		return fmt.Errorf("listen address is required")
	}
	if c.WSPollInterval <= 0 {
		return fmt.Errorf("websocket poll interval must be positive")
	}

	// Валидация Zabbix
	if c.ZabbixEnable {
		if c.ZabbixServer == "" {
			return fmt.Errorf("zabbix server is required")
		}
		if c.ZabbixPort <= 0 || c.ZabbixPort > 65535 {
			return fmt.Errorf("invalid zabbix port: %d", c.ZabbixPort)
		}
		if c.ZabbixHost == "" {
			return fmt.Errorf("zabbix host is required")
		}
		if c.ZabbixInterval <= 0 {
			return fmt.Errorf("zabbix interval must be positive")
		}
		if c.ZabbixTimeout <= 0 {
			return fmt.Errorf("zabbix timeout must be positive")
		}
		if c.MaxRetries <= 0 {
			return fmt.Errorf("max retries must be positive")
		}
		if c.RetryBackoffBase <= 0 {
			return fmt.Errorf("retry backoff must be positive")
		}
	}

	// Валидация профилирования
	if c.ProfileEnable && c.ProfileTime <= 0 {
		return fmt.Errorf("profile time must be positive")
	}

	return nil
}

// AddFlags добавляет флаги в cobra команду
func AddFlags(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "Path to YAML config file")
	cmd.Flags().Duration("interval", 5*time.Second, "Sampling interval")
	cmd.Flags().Duration("tick-timeout", 0, "Timeout of a single sampling tick (defaults to the interval)")
	cmd.Flags().String("source", "gopsutil", "Metrics source (gopsutil, sysinfo)")
	cmd.Flags().Bool("disk-io", false, "Enable disk I/O monitoring")
	cmd.Flags().String("log-level", "info", "Log level (debug, info, warn, error)")
	cmd.Flags().String("listen", ":8080", "HTTP listen address")
	cmd.Flags().Duration("ws-poll-interval", time.Second, "Websocket snapshot poll interval")
	cmd.Flags().String("title", "syshealth", "Report title")
	cmd.Flags().String("members", "", "Team members line of the report")

	// Флаги Zabbix
	cmd.Flags().Bool("zabbix", false, "Push snapshots to Zabbix trapper")
	cmd.Flags().String("zabbix-server", "localhost:10051", "Zabbix server or proxy (host[:port])")
	cmd.Flags().String("zabbix-host", "", "Host name in Zabbix")
	cmd.Flags().Duration("zabbix-interval", 30*time.Second, "Zabbix push interval")
	cmd.Flags().Duration("zabbix-timeout", 10*time.Second, "Zabbix connection timeout")
	cmd.Flags().Int("max-retries", 3, "Max send attempts to Zabbix")
	cmd.Flags().Duration("retry-backoff", time.Second, "Base backoff between Zabbix send attempts")

	// Флаги профилирования
	cmd.Flags().Bool("profile", false, "Enable profiling")
	cmd.Flags().String("profile-cpu", "", "CPU profile output file")
	cmd.Flags().String("profile-mem", "", "Memory profile output file")
	cmd.Flags().Int("profile-time", 30, "CPU profile duration in seconds")
}
