// Package domain models the daily flood signals derived from rainfall gauges,
// social-media posts and a precomputed flood-probability table.
//
// # Data Sources
//
// Three files feed every run. None of them is modified by the pipeline.
//
//	Rainfall ("pluvio_out.csv"):
//	  Data,<station 1>,<station 2>,...,<citywide aggregate>
//	  22/11/2023-06:15:00,0.2,0.0,...,0.1
//	  Sub-daily gauge readings in millimetres. The first column is the reading
//	  instant in DD/MM/YYYY-HH:MM:SS. The citywide aggregate is the last column
//	  unless configured by name.
//
//	Posts ("tweets_out.csv"):
//	  id,data,texto[,...]
//	  1727384,2023-11-22 08:14:51,"Enchente no centro de Blumenau #enchente"
//	  Free-text posts collected upstream. Extra columns are ignored.
//
//	Probability ("probabilidade.csv"):
//	  <index>,<probability>
//	  2023-11-22,0.8431
//	  Output of an external model, one row per date, values in [0, 1].
//
// # Daily Signals
//
// Rainfall is resampled to calendar days by summing every reading that falls
// on the day, per column. Days with no readings are absent, never zero-filled.
// Empty cells contribute zero.
//
// Keyword incidence counts whole-token occurrences of the vocabulary in each
// normalized post, summed per calendar day after deduplicating posts by id.
// A post can contribute several hits. Dates without posts are absent.
//
// The current probability is the value of the chronologically last row,
// rendered as a percentage rounded to two decimals ("84.31%", "100.0%").
//
// # Text Normalization
//
// Posts are cleaned in a fixed order: HTML entities decoded, lower-cased,
// URLs removed, @mentions removed, hashtag markers dropped (the word stays),
// punctuation and symbols replaced by spaces, whitespace collapsed and
// diacritics stripped ("inundação" → "inundacao"). See [NormalizeText].
//
// # Errors
//
// Every malformed input surfaces as a [*DataError] carrying the file, line and
// column. Use errors.Is with [ErrParse], [ErrType], [ErrRange] or [ErrSchema]
// to classify it.
package domain
