package main

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ourkan95/Duplicate-Detector/internal/normalize"
	"github.com/ourkan95/Duplicate-Detector/internal/parser"
	"github.com/ourkan95/Duplicate-Detector/internal/parser/libpostal"
)

// parsedAddress is the JSON printed by the parse command
type parsedAddress struct {
	Input        string `json:"input"`
	HouseNumber  string `json:"house_number"`
	Area         string `json:"area"`
	CityDistrict string `json:"city_district"`
	City         string `json:"city"`
	Postcode     string `json:"postcode"`
	Country      string `json:"country"`
	StandardKey  string `json:"standard_key"`
}

// createParseCmd shows how an address is split before scoring
func createParseCmd() *cobra.Command {
	var city string

	cmd := &cobra.Command{
		Use:   "parse [address]",
		Short: "Parse an address the way the address scorer sees it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			addr, err := parser.ParseAddress(libpostal.NewPostalParser(), text, city)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(parsedAddress{
				Input:        text,
				HouseNumber:  addr.HouseNumber,
				Area:         addr.Area,
				CityDistrict: addr.CityDistrict,
				City:         addr.City,
				Postcode:     addr.Postcode,
				Country:      addr.Country,
				StandardKey:  normalize.StandardKey(text),
			})
		},
	}

	cmd.Flags().StringVar(&city, "city", "", "City column value, overrides the parsed city")
	return cmd
}
