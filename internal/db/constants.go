package db

// timeLayout is the on-disk timestamp format. It sorts lexically, so range
// filters compare strings.
const timeLayout = "2006-01-02 15:04:05"

// dayLayout is the prefix of timeLayout that identifies a calendar day.
const dayLayout = "2006-01-02"

// sqlSinceClause filters the usage table by a lower timestamp bound.
const sqlSinceClause = "WHERE timestamp >= ?"
