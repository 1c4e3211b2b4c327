// Package config provides configuration for the incident report merger.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. A .env file in the working directory
//	3. A YAML configuration file passed with -config
//	4. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern INCIDENT_<SECTION>_<FIELD>:
//
//	INCIDENT_LOGGING_LEVEL=debug
//	INCIDENT_REPORT_INPUT_DIR=dados_xlsx
//	INCIDENT_REPORT_TEMPLATE_PATH=modelo_incidentes_formatados.xlsx
//	INCIDENT_TELEMETRY_METRICS_FILE=metrics/incidentmerge.prom
//
// # Report Rules
//
// The report schema, the ignored title column and the head-office business
// hours are not run configuration. DefaultReportRules returns them as a value
// that callers pass explicitly to the processing code.
package config
