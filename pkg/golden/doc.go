// Package golden runs regression cases against a loaded ruleset. A case
// file pairs named events with the rule id (and optionally the outcome)
// each event must produce, so a ruleset change can be checked against its
// expected decisions before it ships.
package golden
