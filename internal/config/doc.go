// Package config resolves reserve-it's runtime settings from the process
// environment and an optional .env file in the working directory.
// Real environment variables take precedence over .env entries.
package config
