// Package config loads sysresolve configuration.
//
// Configuration is read from a single TOML or YAML file, chosen by
// extension. [Locate] picks the file: an explicit path, then
// $SYSRESOLVE_CONFIG, then $XDG_CONFIG_HOME/sysresolve/config.toml, then
// /etc/sysresolve/config.toml. When none exists the built-in [Default]
// configuration is used, which describes the standard system layout:
//
//	/usr/share/maven-effective-poms  flat, pom
//	/usr/share/maven-poms            flat, pom
//	/usr/lib/java                    jpp, jar
//	/usr/share/java                  jpp, jar
//
// Fields left empty in a file take their default values. Two environment
// variables override the file: SYSRESOLVE_BISECT_COUNTER and JAVA_HOME
// (the latter only when runtime_home is unset).
package config
