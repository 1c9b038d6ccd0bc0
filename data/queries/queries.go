package queries

import (
	"embed"
	"fmt"
)

//go:embed insert/*.sql select/*.sql update/*.sql
var Files embed.FS

// ^^^ the go:embed directive is used to embed the files in the queries package
// meaning on compile time it will convert the files to binary data and embed it in the queries package

type InsertQueries struct {
	Metadata string
	CapmRun  string
}

type SelectQueries struct {
	CapmRunById                 string
	ClosePricesBySymbol         string
	MetaDataBySymbol            string
	MostRecentTimestampBySymbol string
}

type UpdateQueries struct {
	CapmRun           string
	LastRefreshedDate string
}

type QueryHelperStruct struct {
	Insert InsertQueries
	Select SelectQueries
	Update UpdateQueries
}

var QueryHelper = QueryHelperStruct{
	Insert: InsertQueries{
		Metadata: "insert/metadata.sql",
		CapmRun:  "insert/capm_run.sql",
	},
	Select: SelectQueries{
		CapmRunById:                 "select/capm_run_by_id.sql",
		ClosePricesBySymbol:         "select/close_prices_by_symbol.sql",
		MetaDataBySymbol:            "select/meta_data_by_symbol.sql",
		MostRecentTimestampBySymbol: "select/most_recent_timestamp_by_symbol.sql",
	},
	Update: UpdateQueries{
		CapmRun:           "update/capm_run.sql",
		LastRefreshedDate: "update/last_refreshed_date.sql",
	},
}

func Get(path string) string {
	content, err := Files.ReadFile(path)
	if err != nil {
		panic(fmt.Errorf("error reading query file: %w", err))
	}

	return string(content)
}
