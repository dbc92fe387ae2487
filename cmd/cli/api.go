package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/iho/kakeibo/internal/adapter/http/dto"
	"github.com/iho/kakeibo/internal/domain"
)

// apiClient calls the kakeibo JSON API.
type apiClient struct {
	http    *http.Client
	baseURL string
	token   string
}

func newAPIClient() *apiClient {
	return &apiClient{
		http:    &http.Client{Timeout: timeout},
		baseURL: baseURL,
		token:   token,
	}
}

// do sends a request and decodes a JSON response into out when out is not
// nil. Non-2xx answers become errors carrying the server's message.
func (c *apiClient) do(method, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr dto.ErrorResponse
		raw, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != "" {
			if apiErr.Message != "" {
				return fmt.Errorf("%s (status %d): %s", apiErr.Error, resp.StatusCode, apiErr.Message)
			}
			return fmt.Errorf("%s (status %d)", apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("request failed (status %d): %s", resp.StatusCode, bytes.TrimSpace(raw))
	}

	if out == nil {
		return nil
	}
	if w, ok := out.(io.Writer); ok {
		_, err = io.Copy(w, resp.Body)
		return err
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *apiClient) doJSON(method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}
	return c.do(method, path, "application/json", body, out)
}

func newLoginCmd() *cobra.Command {
	var name, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and print a session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.LoginResponse
			err := newAPIClient().doJSON(http.MethodPost, "/api/v1/auth/login", dto.LoginRequest{Name: name, Password: password}, &resp)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Token)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "User name")
	cmd.Flags().StringVar(&password, "password", "", "Password")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func newSummaryCmd() *cobra.Command {
	summaryCmd := &cobra.Command{
		Use:   "summary",
		Short: "Show income and expense totals",
	}

	summaryCmd.AddCommand(&cobra.Command{
		Use:   "year <year>",
		Short: "Show the totals of a year",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid year %q", args[0])
			}
			var resp dto.YearSummaryResponse
			if err := newAPIClient().doJSON(http.MethodGet, fmt.Sprintf("/api/v1/summary/year/%d", year), nil, &resp); err != nil {
				return err
			}
			printJSON(resp)
			return nil
		},
	})

	summaryCmd.AddCommand(&cobra.Command{
		Use:   "month <year> <month>",
		Short: "Show the totals and opening balance of a month",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			period, err := parsePeriod(args)
			if err != nil {
				return err
			}
			var resp dto.MonthSummaryResponse
			if err := newAPIClient().doJSON(http.MethodGet, "/api/v1/summary/month/"+periodPath(period), nil, &resp); err != nil {
				return err
			}
			printJSON(resp)
			return nil
		},
	})

	return summaryCmd
}

func newLockCmd() *cobra.Command {
	var unlock bool

	cmd := &cobra.Command{
		Use:   "lock <year> <month>",
		Short: "Lock a month against edits, or unlock it with --unlock",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			period, err := parsePeriod(args)
			if err != nil {
				return err
			}
			var resp dto.MonthLockResponse
			err = newAPIClient().doJSON(http.MethodPut, "/api/v1/month-lock/"+periodPath(period), dto.MonthLockRequest{IsLocked: !unlock}, &resp)
			if err != nil {
				return err
			}
			state := "unlocked"
			if resp.IsLocked {
				state = "locked"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is %s\n", period, state)
			return nil
		},
	}

	cmd.Flags().BoolVar(&unlock, "unlock", false, "Unlock instead of lock")
	return cmd
}

func newCSVCmd() *cobra.Command {
	csvCmd := &cobra.Command{
		Use:   "csv",
		Short: "Export or import transactions as CSV",
	}

	var year, month int
	var output string
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write transactions as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			if month != 0 && year == 0 {
				return errors.New("--month requires --year")
			}
			query := url.Values{}
			if year != 0 {
				query.Set("year", strconv.Itoa(year))
			}
			if month != 0 {
				query.Set("month", strconv.Itoa(month))
			}
			path := "/api/v1/csv/export"
			if len(query) > 0 {
				path += "?" + query.Encode()
			}

			out := cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}
			return newAPIClient().do(http.MethodGet, path, "", nil, out)
		},
	}
	exportCmd.Flags().IntVar(&year, "year", 0, "Only this year")
	exportCmd.Flags().IntVar(&month, "month", 0, "Only this month (needs --year)")
	exportCmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")

	importCmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Create transactions from a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			var resp dto.ImportResponse
			if err := newAPIClient().do(http.MethodPost, "/api/v1/csv/import", "text/csv", f, &resp); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d transactions\n", resp.Imported)
			return nil
		},
	}

	csvCmd.AddCommand(exportCmd, importCmd)
	return csvCmd
}

func periodPath(p domain.Period) string {
	return fmt.Sprintf("%d/%d", p.Year, p.Month)
}
