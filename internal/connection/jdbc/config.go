package jdbc

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/nucleus/cdc-conductor/internal/connection"
)

const (
	KeyURL      = "url"
	KeyUser     = "user"
	KeyPassword = "password"
)

// Vendors understood by the validator, keyed by JDBC subprotocol.
const (
	VendorPostgres  = "postgresql"
	VendorSQLServer = "sqlserver"
)

// Config holds JDBC connection configuration parsed from a JDBC URL.
type Config struct {
	Vendor   string
	Driver   string
	Host     string
	Port     int
	Database string
	User     string
	Password string
	Params   map[string]string
}

// ParseConfig runs the parameter phase.
func ParseConfig(params map[string]any) (*Config, error) {
	raw, err := connection.RequireString(params, KeyURL, "JDBC URL")
	if err != nil {
		return nil, err
	}
	cfg, err := ParseURL(raw)
	if err != nil {
		return nil, &connection.ParamError{Field: KeyURL, Message: err.Error()}
	}
	if user := connection.StringValue(params, KeyUser); user != "" {
		cfg.User = user
	}
	if password := connection.StringValue(params, KeyPassword); password != "" {
		cfg.Password = password
	}
	return cfg, nil
}

// ParseURL understands jdbc:postgresql://host[:port]/db?k=v and
// jdbc:sqlserver://host[:port];k=v;...
func ParseURL(raw string) (*Config, error) {
	rest, ok := strings.CutPrefix(raw, "jdbc:")
	if !ok {
		return nil, fmt.Errorf("JDBC URL must start with jdbc:")
	}
	vendor, _, _ := strings.Cut(rest, ":")

	switch vendor {
	case VendorPostgres:
		return parsePostgres(rest)
	case VendorSQLServer:
		return parseSQLServer(rest)
	}
	return nil, fmt.Errorf("JDBC URL subprotocol %s not supported", vendor)
}

func parsePostgres(rest string) (*Config, error) {
	u, err := url.Parse(rest)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("JDBC URL must look like jdbc:postgresql://host:port/database")
	}
	port, err := portOrDefault(u.Port(), 5432)
	if err != nil {
		return nil, err
	}
	cfg := &Config{
		Vendor:   VendorPostgres,
		Driver:   "postgres",
		Host:     u.Hostname(),
		Port:     port,
		Database: strings.TrimPrefix(u.Path, "/"),
		Params:   map[string]string{},
	}
	for k, v := range u.Query() {
		if len(v) > 0 {
			cfg.Params[k] = v[0]
		}
	}
	cfg.User = cfg.Params["user"]
	cfg.Password = cfg.Params["password"]
	return cfg, nil
}

func parseSQLServer(rest string) (*Config, error) {
	body := strings.TrimPrefix(rest, VendorSQLServer+"://")
	if body == rest || body == "" {
		return nil, fmt.Errorf("JDBC URL must look like jdbc:sqlserver://host:port;databaseName=db")
	}

	parts := strings.Split(body, ";")
	hostPort := parts[0]
	host, portStr := hostPort, ""
	if h, p, err := net.SplitHostPort(hostPort); err == nil {
		host, portStr = h, p
	}
	if host == "" {
		return nil, fmt.Errorf("JDBC URL must name a host")
	}
	port, err := portOrDefault(portStr, 1433)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Vendor: VendorSQLServer,
		Driver: "sqlserver",
		Host:   host,
		Port:   port,
		Params: map[string]string{},
	}
	for _, p := range parts[1:] {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			continue
		}
		switch strings.ToLower(k) {
		case "databasename", "database":
			cfg.Database = v
		case "user":
			cfg.User = v
		case "password":
			cfg.Password = v
		default:
			cfg.Params[k] = v
		}
	}
	return cfg, nil
}

func portOrDefault(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	port, err := strconv.Atoi(raw)
	if err != nil || port < 1 || port > 65535 {
		return 0, fmt.Errorf("Port must be between 1 and 65535")
	}
	return port, nil
}

// DSN builds the driver connection string.
func (c *Config) DSN(connectTimeoutSeconds int) string {
	host := net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
	q := url.Values{}

	switch c.Vendor {
	case VendorPostgres:
		sslMode := c.Params["sslmode"]
		if sslMode == "" {
			if strings.EqualFold(c.Params["ssl"], "true") {
				sslMode = "require"
			} else {
				sslMode = "disable"
			}
		}
		q.Set("sslmode", sslMode)
		if connectTimeoutSeconds > 0 {
			q.Set("connect_timeout", strconv.Itoa(connectTimeoutSeconds))
		}
		u := url.URL{Scheme: "postgres", Host: host, Path: "/" + c.Database, RawQuery: q.Encode()}
		if c.User != "" {
			u.User = url.UserPassword(c.User, c.Password)
		}
		return u.String()

	case VendorSQLServer:
		if c.Database != "" {
			q.Set("database", c.Database)
		}
		for k, v := range c.Params {
			switch strings.ToLower(k) {
			case "encrypt":
				q.Set("encrypt", v)
			case "trustservercertificate":
				q.Set("TrustServerCertificate", v)
			}
		}
		if connectTimeoutSeconds > 0 {
			q.Set("connection timeout", strconv.Itoa(connectTimeoutSeconds))
		}
		u := url.URL{Scheme: "sqlserver", Host: host, RawQuery: q.Encode()}
		if c.User != "" {
			u.User = url.UserPassword(c.User, c.Password)
		}
		return u.String()
	}
	return ""
}
