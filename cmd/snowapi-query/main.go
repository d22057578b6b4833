// Command snowapi-query runs one SQL statement against the Snowflake
// SQL API using credentials discovered from the environment, and
// prints the decoded rows.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/lakebound/snowapi/env"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatalf("usage: %s '<sql statement>'", os.Args[0])
	}

	client, err := env.Connect()
	if err != nil {
		log.Fatalf("connect: %v", err)
	}

	result, err := client.Query(context.Background(), os.Args[1])
	if err != nil {
		log.Fatalf("query: %v", err)
	}

	fmt.Println(result.ColumnNames())
	for _, row := range result.Rows() {
		pairs, err := row.Pairs()
		if err != nil {
			log.Fatalf("decoding row: %v", err)
		}
		fmt.Println(pairs)
	}
}
