// Inspector is a small operator CLI that queries a running hookgate and
// prints the policy view of one venue: metrics, thresholds and optionally
// the authorization flag of a principal.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"
)

func main() {
	addr := flag.String("addr", "http://localhost:8080", "hookgate base URL")
	venue := flag.String("venue", "", "venue id (0x-prefixed 32-byte hash)")
	principal := flag.String("principal", "", "optional principal to check authorization for")
	flag.Parse()

	if *venue == "" {
		fmt.Fprintln(os.Stderr, "usage: inspector -venue 0x... [-principal 0x...] [-addr http://...]")
		os.Exit(2)
	}

	client := &http.Client{Timeout: 5 * time.Second}

	fmt.Println("--- Venue Metrics ---")
	dump(client, *addr+"/v1/venues/"+*venue+"/metrics")

	fmt.Println("\n--- Threshold ---")
	dump(client, *addr+"/v1/venues/"+*venue+"/threshold")

	if *principal != "" {
		fmt.Println("\n--- Authorization ---")
		dump(client, *addr+"/v1/authorization/"+*principal)
	}
}

func dump(client *http.Client, url string) {
	resp, err := client.Get(url)
	if err != nil {
		fmt.Fprintf(os.Stderr, "request failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	var body map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		fmt.Fprintf(os.Stderr, "decode failed: %v\n", err)
		os.Exit(1)
	}
	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(os.Stderr, "HTTP %d: %v\n", resp.StatusCode, body)
		os.Exit(1)
	}
	for k, v := range body {
		fmt.Printf("%s: %v\n", k, v)
	}
}
