// Package common contains shared constants and sentinel errors used across
// cmgshare components.
package common

// ContainerExtension is the file suffix of an encrypted share container.
const ContainerExtension = ".cmg"

// PepperEnvVar names the environment variable that may supply the pepper
// secret for the current pepper version.
const PepperEnvVar = "APP_PEPPER"
