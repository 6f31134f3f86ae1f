package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
)

// Seeds a running API with demo reference data, vehicles, invoices and line
// items so the alert rules and totals pipeline have something to chew on.
//
//	API_URL=http://localhost:8080/api SEED_USER=admin SEED_PASSWORD=... go run ./cmd/seed

var authToken string

func authorizedPost(url string, body *bytes.Buffer) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}
	client := &http.Client{Timeout: 10 * time.Second}
	return client.Do(req)
}

// postJSON marshals v, posts it and decodes the response's "id" field.
func postJSON(url string, v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal payload: %w", err)
	}

	resp, err := authorizedPost(url, bytes.NewBuffer(data))
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	id, ok := result["id"].(string)
	if !ok {
		return "", fmt.Errorf("no id in response from %s", url)
	}
	return id, nil
}

func login(apiURL, username, password string) error {
	payload := map[string]string{"username": username, "password": password}
	data, _ := json.Marshal(payload)

	resp, err := authorizedPost(apiURL+"/auth/login", bytes.NewBuffer(data))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		// First run against an empty database: register the user instead.
		register := map[string]string{
			"username": username,
			"password": password,
			"email":    username + "@fleet.example",
			"role":     "admin",
		}
		data, _ := json.Marshal(register)
		resp, err = authorizedPost(apiURL+"/auth/register", bytes.NewBuffer(data))
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusCreated {
			return fmt.Errorf("register failed with status %d", resp.StatusCode)
		}
	} else if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("login failed with status %d", resp.StatusCode)
	}

	var result struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return err
	}
	authToken = result.Token
	return nil
}

var vehicleMakes = map[string][]string{
	"Ford":      {"F-150", "Transit", "Explorer"},
	"Chevrolet": {"Silverado", "Express", "Tahoe"},
	"Toyota":    {"Tacoma", "Tundra", "Sienna"},
	"RAM":       {"1500", "ProMaster"},
}

var vinChars = "ABCDEFGHJKLMNPRSTUVWXYZ0123456789"

func randomVIN() string {
	vin := make([]byte, 17)
	for i := range vin {
		vin[i] = vinChars[rand.Intn(len(vinChars))]
	}
	return string(vin)
}

func randomVehicle() map[string]interface{} {
	makes := make([]string, 0, len(vehicleMakes))
	for m := range vehicleMakes {
		makes = append(makes, m)
	}
	vehicleMake := makes[rand.Intn(len(makes))]
	model := vehicleMakes[vehicleMake][rand.Intn(len(vehicleMakes[vehicleMake]))]

	// Spread expirations around today so some permit alerts fire immediately.
	insurance := time.Now().AddDate(0, rand.Intn(13)-3, 0).Format(time.RFC3339)

	return map[string]interface{}{
		"vin":                       randomVIN(),
		"make":                      vehicleMake,
		"model":                     model,
		"year":                      2018 + rand.Intn(7),
		"license_plate":             fmt.Sprintf("FLT-%04d", rand.Intn(10000)),
		"status":                    "active",
		"insurance_expiration_date": insurance,
	}
}

var serviceCatalog = []map[string]interface{}{
	{"name": "oil_change", "description": "Oil and filter change", "category": "maintenance"},
	{"name": "brake_service", "description": "Brake pad and rotor service", "category": "repair"},
	{"name": "tire_rotation", "description": "Tire rotation and balance", "category": "maintenance"},
	{"name": "annual_inspection", "description": "State annual inspection", "category": "inspection"},
	{"name": "battery_replacement", "description": "12V battery replacement", "category": "parts"},
}

var vendorNames = []string{
	"Main Street Auto", "Fleet Pros", "Rapid Lube", "Hometown Tire & Brake",
}

func main() {
	apiURL := os.Getenv("API_URL")
	if apiURL == "" {
		apiURL = "http://localhost:8080/api"
	}
	username := os.Getenv("SEED_USER")
	if username == "" {
		username = "admin"
	}
	password := os.Getenv("SEED_PASSWORD")
	if password == "" {
		password = "seed-password"
	}

	if err := login(apiURL, username, password); err != nil {
		log.WithError(err).Fatal("authentication failed")
	}
	log.Info("authenticated")

	var serviceTypeIDs []string
	for _, st := range serviceCatalog {
		id, err := postJSON(apiURL+"/service-types", st)
		if err != nil {
			log.WithError(err).WithField("name", st["name"]).Warn("service type seed failed")
			continue
		}
		serviceTypeIDs = append(serviceTypeIDs, id)
	}
	log.WithField("count", len(serviceTypeIDs)).Info("seeded service types")

	var vendorIDs []string
	for _, name := range vendorNames {
		id, err := postJSON(apiURL+"/vendors", map[string]interface{}{
			"name":  name,
			"email": "billing@" + name[:4] + ".example",
		})
		if err != nil {
			log.WithError(err).WithField("name", name).Warn("vendor seed failed")
			continue
		}
		vendorIDs = append(vendorIDs, id)
	}
	log.WithField("count", len(vendorIDs)).Info("seeded vendors")

	var vehicleIDs []string
	for i := 0; i < 10; i++ {
		id, err := postJSON(apiURL+"/vehicles", randomVehicle())
		if err != nil {
			log.WithError(err).Warn("vehicle seed failed")
			continue
		}
		vehicleIDs = append(vehicleIDs, id)
	}
	log.WithField("count", len(vehicleIDs)).Info("seeded vehicles")

	if len(vehicleIDs) == 0 || len(vendorIDs) == 0 || len(serviceTypeIDs) == 0 {
		log.Fatal("not enough reference data to seed invoices")
	}

	invoiceCount := 0
	itemCount := 0
	for i := 0; i < 20; i++ {
		vehicleID := vehicleIDs[rand.Intn(len(vehicleIDs))]
		invoiceID, err := postJSON(apiURL+"/invoices", map[string]interface{}{
			"vehicle_id":       vehicleID,
			"vendor_id":        vendorIDs[rand.Intn(len(vendorIDs))],
			"invoice_number":   fmt.Sprintf("INV-%05d", 10000+i),
			"invoice_date":     time.Now().AddDate(0, 0, -rand.Intn(90)).Format(time.RFC3339),
			"order_start_date": time.Now().AddDate(0, 0, -rand.Intn(90)).Format(time.RFC3339),
		})
		if err != nil {
			log.WithError(err).Warn("invoice seed failed")
			continue
		}
		invoiceCount++

		// A few items per invoice. Repeating services on the same vehicle is
		// deliberate: it trips the duplicate-service and price rules.
		for j := 0; j < 1+rand.Intn(3); j++ {
			_, err := postJSON(apiURL+"/line-items", map[string]interface{}{
				"invoice_id":      invoiceID,
				"service_type_id": serviceTypeIDs[rand.Intn(len(serviceTypeIDs))],
				"description":     "seeded service",
				"unit_price":      20 + rand.Float64()*180,
				"quantity":        float64(1 + rand.Intn(3)),
				"taxable":         rand.Intn(2) == 0,
				"mileage":         30000 + rand.Intn(90000),
			})
			if err != nil {
				log.WithError(err).Warn("line item seed failed")
				continue
			}
			itemCount++
		}
	}

	log.WithFields(log.Fields{
		"invoices":   invoiceCount,
		"line_items": itemCount,
	}).Info("seed complete")
}
