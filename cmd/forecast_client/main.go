package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

type cityList struct {
	Cities []struct {
		Index int    `json:"index"`
		Name  string `json:"name"`
	} `json:"cities"`
	Count int `json:"count"`
}

type view struct {
	City   string `json:"city"`
	Status struct {
		Phase   string `json:"phase"`
		Message string `json:"message"`
	} `json:"status"`
	Cards []struct {
		DateLabel string `json:"dateLabel"`
		Weather   string `json:"weather"`
		High      string `json:"high"`
		Low       string `json:"low"`
	} `json:"cards"`
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "Base URL of the forecast server")
	city := flag.String("city", "", "City name to select (defaults to the first city)")
	list := flag.Bool("list", false, "List the available cities and exit")
	flag.Parse()

	client := &http.Client{Timeout: 60 * time.Second}

	var cities cityList
	if err := getJSON(client, *baseURL+"/api/cities", &cities); err != nil {
		fmt.Printf("Error fetching cities: %v\n", err)
		os.Exit(1)
	}

	if *list {
		for _, c := range cities.Cities {
			fmt.Printf("%3d  %s\n", c.Index, c.Name)
		}
		return
	}

	if cities.Count == 0 {
		fmt.Println("No cities available.")
		return
	}

	index := cities.Cities[0].Index
	if *city != "" {
		index = -1
		for _, c := range cities.Cities {
			if strings.EqualFold(c.Name, *city) {
				index = c.Index
				break
			}
		}
		if index < 0 {
			fmt.Printf("Unknown city %q, use -list to see the catalog\n", *city)
			os.Exit(1)
		}
	}

	resp, err := client.Post(fmt.Sprintf("%s/api/selection?city=%d&action=click", *baseURL, index), "", nil)
	if err != nil {
		fmt.Printf("Error fetching forecast: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	var v view
	body, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(body, &v); err != nil {
		fmt.Printf("Error decoding forecast: %v\n", err)
		os.Exit(1)
	}

	if v.Status.Message != "" {
		fmt.Println(v.Status.Message)
	}
	if len(v.Cards) == 0 {
		return
	}

	fmt.Printf("\n7-day forecast for %s\n", v.City)
	fmt.Println(strings.Repeat("=", 24+len(v.City)))
	for _, card := range v.Cards {
		fmt.Printf("%-12s %-12s High: %-7s Low: %s\n", card.DateLabel, card.Weather, card.High, card.Low)
	}
}

func getJSON(client *http.Client, url string, out interface{}) error {
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
