// Package domain models the city-level relocation dataset fused from three
// scraped sources.
//
// # Sources
//
// Cost of living comes from Numbeo city pages and is the only per-city
// signal; it forms the identity spine of every snapshot. Visa access comes
// from a visaindex.com passport page and is keyed by destination country.
// Connectivity comes from the Speedtest Global Index country tables (mobile
// and fixed broadband, megabits per second).
//
// # Join conventions
//
// Country-level signals are broadcast to every city in that country. Country
// names are matched through a canonical-alias table because the three sites
// disagree on spellings ("United States" vs "United States of America",
// "Czech Republic" vs "Czechia").
//
// Visa access is tri-state: a country absent from the visa source is
// "unknown", never "visa-required". The traveller's home country is always
// visa-free relative to itself, regardless of what the source claims.
//
// # Scoring
//
// nomad_score is a weighted composite of three 0-100 components: visa (100
// when visa-free, 50 otherwise), cost (min-max inverse across the snapshot)
// and speed (fraction of the snapshot maximum). A record missing either its
// monthly cost or its average speed is dropped from the snapshot rather than
// scored with a misleading partial value, so every record that reaches
// ranking carries a defined score.
package domain
