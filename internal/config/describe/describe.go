// Package describe maps variable names to the human-readable description
// blocks written above each settings-file entry.
package describe

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Func returns the newline-terminated description for a variable name, or
// the empty string when no description exists.
type Func func(name string) string

// builtin is the English catalog for the schema variables.
var builtin = map[string]string{
	"create_htaccess": "If you are using Apache as your web server, the setup can create " +
		".htaccess files for you, to secure files that contain sensitive information.",
	"webservergroup": "The group your web server runs as. Leave blank only if you cannot " +
		"determine it; file permissions will then be world-writable where group access " +
		"would have sufficed.",
	"use_suexec": "Set to 1 if your web server runs CGI programs under suexec. File " +
		"permissions are then relaxed so the suexec user can read them.",
	"db_driver": "The database driver to use. Supported values are mysql, pg, sqlite " +
		"and oracle.",
	"db_host": "The host that the database server runs on.",
	"db_name": "The name of the database.",
	"db_user": "The database user account.",
	"db_pass": "The password for the database user. If you use apostrophes or " +
		"backslashes, escape them with a backslash.",
	"db_port": "The port the database server listens on. 0 means the driver default.",
	"db_sock": "The UNIX socket of a local database server. Leave blank to use the " +
		"driver default.",
	"db_check": "Set to 0 to skip the database version check at startup. Only do this " +
		"if you know the check fails incorrectly on your setup.",
	"db_mysql_ssl_client_cert": "Path of the client certificate used for TLS " +
		"connections to MySQL. Leave unset for plain connections.",
	"db_mysql_ssl_client_key": "Path of the private key for the MySQL TLS client " +
		"certificate.",
	"db_mysql_ssl_ca_file": "Path of a CA certificate file used to verify the MySQL " +
		"server certificate.",
	"db_mysql_ssl_ca_dir": "Path of a directory of CA certificates used to verify the " +
		"MySQL server certificate.",
	"index_html": "Set to 1 to create an index.html redirect to the front page. Only " +
		"needed if your web server cannot use index.cgi as a directory index.",
	"interdiff": "The full path of the interdiff executable, used to compare two " +
		"patch revisions. Leave blank if interdiff is not installed.",
	"diffpath": "The directory containing the diff executable, needed for patch " +
		"viewing.",
	"site_wide_secret": "A secret key used to protect session data. It was generated " +
		"for you; there is no need to change it. Keep it private.",
	"param_override": "Per-deployment parameter overrides applied on top of the " +
		"stored parameters. Sub-keys outside the known override set are ignored.",
}

// Builtin returns the built-in English description lookup. Results are
// newline-terminated.
func Builtin() Func {
	return func(name string) string {
		return terminate(builtin[name])
	}
}

// LoadCatalog reads a YAML file of name-to-description strings layered
// over the built-in catalog. A missing file yields the built-ins alone.
func LoadCatalog(path string) (Func, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Builtin(), nil
		}
		return nil, fmt.Errorf("reading description catalog %s: %w", path, err)
	}

	var overlay map[string]string
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("parsing description catalog %s: %w", path, err)
	}

	return func(name string) string {
		if d, ok := overlay[name]; ok {
			return terminate(d)
		}
		return terminate(builtin[name])
	}, nil
}

// terminate ensures a non-empty description ends with a newline.
func terminate(s string) string {
	if s == "" {
		return ""
	}
	if !strings.HasSuffix(s, "\n") {
		return s + "\n"
	}
	return s
}
