// Package config loads the configuration shared by every pipeline command.
//
// # Configuration Sources
//
// Values are layered in the following order, later sources winning:
//
//	1. Default values
//	2. A YAML file (CREDITRISK_CONFIG, ./config.yaml or ./configs/config.yaml)
//	3. Environment variables
//
// # Environment Variables
//
// Every variable is prefixed with CREDITRISK_ and named after its section:
//
//	CREDITRISK_LOGGING_LEVEL=debug
//	CREDITRISK_PATHS_PROCESSED_FILE=out/german_processed.csv
//	CREDITRISK_VALIDATION_CLASS_BALANCE_THRESHOLD=0.85
//	CREDITRISK_TRAINING_NEIGHBOURS=3,5,7
//	CREDITRISK_TRAINING_FOREST_SIZES=50,100
//
// # Categorical Mappings
//
// The code to label table applied during preprocessing is embedded from
// mappings.yaml. A replacement file may be supplied through
// paths.mappings_file; it must contain the full table.
package config
