// Command mediascan runs one full scan of the configured media
// directory and prints a summary report. Configuration comes from the
// environment; see the config package for the variable names.
package main
