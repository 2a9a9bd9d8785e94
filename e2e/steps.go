package e2e

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/cucumber/godog"
)

// RegisterSteps binds the resident query steps to tc.
func RegisterSteps(sc *godog.ScenarioContext, tc *TestContext) {
	sc.Step(`^the demo residents are loaded$`, func() error {
		if err := tc.GET("/health/ready"); err != nil {
			return err
		}
		if tc.LastResponse.StatusCode != http.StatusOK {
			return fmt.Errorf("server not ready: %d %s", tc.LastResponse.StatusCode, tc.LastResponseBody)
		}
		return nil
	})

	sc.Step(`^I query residents with no criteria$`, func() error {
		return tc.PostForm("/residents/query", url.Values{})
	})
	sc.Step(`^I query residents with "([^"]*)" set to "([^"]*)"$`, func(field, value string) error {
		return tc.PostForm("/residents/query", url.Values{field: {value}})
	})
	sc.Step(`^I query residents with:$`, func(table *godog.Table) error {
		form := url.Values{}
		for i, row := range table.Rows {
			if i == 0 {
				continue
			}
			form.Set(row.Cells[0].Value, row.Cells[1].Value)
		}
		return tc.PostForm("/residents/query", form)
	})
	sc.Step(`^I request a breakdown by "([^"]*)"$`, func(column string) error {
		return tc.GET("/residents/breakdown?by=" + url.QueryEscape(column))
	})
	sc.Step(`^I post a JSON body to "([^"]*)"$`, func(path string) error {
		return tc.PostRaw(path, "application/json", `{"sector":"S1"}`)
	})

	sc.Step(`^the response status should be (\d+)$`, func(status int) error {
		if tc.LastResponse.StatusCode != status {
			return fmt.Errorf("expected status %d, got %d: %s", status, tc.LastResponse.StatusCode, tc.LastResponseBody)
		}
		return nil
	})
	sc.Step(`^the response should contain (\d+) residents?$`, func(count int) error {
		data, err := tc.Data()
		if err != nil {
			return err
		}
		if len(data) != count {
			return fmt.Errorf("expected %d residents, got %d", count, len(data))
		}
		return nil
	})
	sc.Step(`^every resident should have "([^"]*)" equal to "([^"]*)"$`, func(column, value string) error {
		data, err := tc.Data()
		if err != nil {
			return err
		}
		for _, r := range data {
			if r[column] != value {
				return fmt.Errorf("resident %v has %s=%v, want %q", r["id"], column, r[column], value)
			}
		}
		return nil
	})
	sc.Step(`^the first group should be "([^"]*)" with population (\d+)$`, func(value string, population int) error {
		data, err := tc.Data()
		if err != nil {
			return err
		}
		if len(data) == 0 {
			return fmt.Errorf("breakdown is empty")
		}
		got := data[0]
		if got["value"] != value || got["population"] != float64(population) {
			return fmt.Errorf("first group is %v (%v), want %s (%d)", got["value"], got["population"], value, population)
		}
		return nil
	})
	sc.Step(`^the error code should be "([^"]*)"$`, func(code string) error {
		v, err := tc.GetResponseField("error")
		if err != nil {
			return err
		}
		if v != code {
			return fmt.Errorf("expected error %q, got %v", code, v)
		}
		return nil
	})
}
