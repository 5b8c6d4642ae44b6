package cmd

import (
	"fmt"
	"log"

	"github.com/pattern303/p303"
	"github.com/pattern303/p303/config"
	"github.com/pattern303/p303/tb303"
)

// Synther returns the voice the commands play with: the one in the user
// config, with the voicing replaced if voicing is not empty.
func Synther(c config.Config, voicing string) (p303.Synther, error) {
	if c.YmlError != nil {
		log.Printf("ignoring config file: %v", c.YmlError)
	}
	if voicing != "" {
		c.Voice.Voicing = voicing
	}
	s, err := c.Synther()
	if err != nil {
		return nil, fmt.Errorf("could not create synth: %w", err)
	}
	return s, nil
}

// Voicings lists the accepted values for a voicing flag.
func Voicings() []string {
	return []string{tb303.Classic.String(), tb303.Lite.String()}
}
