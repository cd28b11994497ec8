// Package dataprocessing turns the raw German Credit file into the encoded
// feature table.
//
// # Components
//
//  1. RawLoader: reads the space separated file and names its 21 columns
//  2. ApplyMappings: replaces categorical codes with readable labels
//  3. Encoder: one-hot encodes labels and remaps the target to {0,1}
//
// # Usage
//
//	loader := dataprocessing.NewRawLoader(domain.GermanCredit(), logger)
//	raw, err := loader.Load("data/raw/raw_data.csv")
//	if err != nil {
//	    return err
//	}
//	mapped, gaps := dataprocessing.ApplyMappings(raw, mappings)
//	encoded, err := dataprocessing.NewEncoder(domain.GermanCredit(), logger).Encode(mapped)
//
// Every step returns a new table; inputs are never modified.
package dataprocessing
