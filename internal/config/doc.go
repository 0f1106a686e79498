// Package config loads the planner's settings from an optional config.yaml
// and PLANNER_-prefixed environment variables, applies defaults, and
// validates the result before any component starts.
package config
