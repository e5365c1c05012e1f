package config

import "os"

type Config struct {
	Port        string
	FactorsFile string
}

func FromEnv() Config {
	c := Config{}
	c.Port = getenv("PORT", "8080")
	c.FactorsFile = os.Getenv("FACTORS_FILE")
	return c
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
