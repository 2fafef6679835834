// Package cli implements the cmg command-line tool.
//
// Commands:
//
//	cmg register -code C                       create a PIN for patient C
//	cmg login    -code C                       check the PIN and open a session
//	cmg export   -code C -in bundle.json [-hours 24]
//	                                           seal, encrypt and store a share package
//	cmg import   -in F                         decrypt a package with its key
//	cmg keygen                                 print one fresh export key
//	cmg version                                print build information
//
// PINs and keys are read without echo when stdin is a terminal. Any failure
// prints a generic message and exits with status 1; details go to the log.
package cli
