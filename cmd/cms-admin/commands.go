package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Nurdhuha/website-ukim/internal/adminclient"
	"github.com/Nurdhuha/website-ukim/internal/models"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Obtain an access token",
	Long: `Authenticate and print an access token.

Export it for later commands:
  export CMS_TOKEN=$(cms-admin login -u admin)`,
	RunE: runLogin,
}

var listCmd = &cobra.Command{
	Use:   "list <view>",
	Short: "List every record of a view, drafts included",
	Args:  cobra.ExactArgs(1),
	RunE:  runList,
}

var createCmd = &cobra.Command{
	Use:   "create <view>",
	Short: "Create a record",
	Args:  cobra.ExactArgs(1),
	RunE:  runCreate,
}

var editCmd = &cobra.Command{
	Use:   "edit <view> <id>",
	Short: "Edit a record; only the given flags change",
	Args:  cobra.ExactArgs(2),
	RunE:  runEdit,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <view> <id>",
	Short: "Delete a record permanently",
	Args:  cobra.ExactArgs(2),
	RunE:  runDelete,
}

var (
	loginUser     string
	loginPassword string
	assumeYes     bool
)

func init() {
	loginCmd.Flags().StringVarP(&loginUser, "username", "u", "admin", "Username")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", os.Getenv("CMS_PASSWORD"), "Password (or set CMS_PASSWORD, otherwise read from stdin)")

	addFormFlags(createCmd)
	addFormFlags(editCmd)
	deleteCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Skip the confirmation prompt")
}

// addFormFlags registers the record fields shared by create and edit.
func addFormFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("title", "", "Title")
	f.String("slug", "", "Slug (documents)")
	f.String("summary", "", "Summary (documents)")
	f.String("status", "", "draft or published")
	f.String("published-at", "", "Publication timestamp, ISO 8601 (documents)")
	f.String("content", "", "Markdown content (artikel, pages)")
	f.String("content-file", "", "Read the Markdown content from this file")
	f.String("category", "", "Category (artikel, pengumuman)")
	f.StringSlice("image", nil, "Image to upload; repeat up to 3 times for gallery")
	f.String("pdf", "", "PDF to upload (akademik)")
	f.String("department", "", "Department (gallery)")
	f.String("activity-date", "", "Activity date YYYY-MM-DD (gallery)")
	f.String("description", "", "Description (events)")
	f.String("location", "", "Location (events)")
	f.String("start-date", "", "Start date YYYY-MM-DD (events)")
	f.String("end-date", "", "End date YYYY-MM-DD (events)")
	f.String("start-time", "", "Start time HH:MM (events)")
	f.String("end-time", "", "End time HH:MM (events)")
	f.Bool("all-day", false, "All-day event (events)")
}

func runLogin(cmd *cobra.Command, args []string) error {
	s := newSession(cmd)
	defer s.close()

	password := loginPassword
	if password == "" {
		fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("read password: %w", err)
		}
		password = strings.TrimSpace(line)
	}

	res, err := s.client.Login(s.ctx, loginUser, password)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), res.AccessToken)
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	s := newSession(cmd)
	defer s.close()

	lc, err := s.lifecycle(args[0])
	if err != nil {
		return err
	}
	snap := lc.Snapshot()
	if len(snap.Rows) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No %s records.\n", snap.View)
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	if snap.View == adminclient.ViewEvents {
		fmt.Fprintln(w, "ID\tTITLE\tDATE\tUPDATED")
		for _, row := range snap.Rows {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", row.ID, row.Title, row.StartDate, row.UpdatedAt.Format("2006-01-02 15:04"))
		}
	} else {
		fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tUPDATED")
		for _, row := range snap.Rows {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", row.ID, row.Title, row.Status, row.UpdatedAt.Format("2006-01-02 15:04"))
		}
	}
	return w.Flush()
}

func runCreate(cmd *cobra.Command, args []string) error {
	s := newSession(cmd)
	defer s.close()

	lc, err := s.lifecycle(args[0])
	if err != nil {
		return err
	}
	form := lc.New()
	if err := applyFlags(cmd, form); err != nil {
		return err
	}
	if err := lc.Submit(s.ctx); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s record.\n", form.View())
	return nil
}

func runEdit(cmd *cobra.Command, args []string) error {
	s := newSession(cmd)
	defer s.close()

	id, err := parseID(args[1])
	if err != nil {
		return err
	}
	lc, err := s.lifecycle(args[0])
	if err != nil {
		return err
	}
	form, err := lc.Edit(id)
	if err != nil {
		return fmt.Errorf("%s %d: %w", args[0], id, err)
	}
	if err := applyFlags(cmd, form); err != nil {
		return err
	}
	if err := lc.Submit(s.ctx); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Updated %s %d.\n", form.View(), id)
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	s := newSession(cmd)
	defer s.close()

	id, err := parseID(args[1])
	if err != nil {
		return err
	}
	lc, err := s.lifecycle(args[0])
	if err != nil {
		return err
	}
	in := bufio.NewReader(cmd.InOrStdin())
	deleted, err := lc.Delete(s.ctx, id, func(row adminclient.Row) bool {
		if assumeYes {
			return true
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Delete %q (id %d)? This cannot be undone. [y/N] ", row.Title, row.ID)
		answer, _ := in.ReadString('\n')
		answer = strings.ToLower(strings.TrimSpace(answer))
		return answer == "y" || answer == "yes"
	})
	if err != nil {
		return err
	}
	if !deleted {
		fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s %d.\n", args[0], id)
	return nil
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

// applyFlags copies the flags the user set onto form.
func applyFlags(cmd *cobra.Command, form adminclient.Form) error {
	f := cmd.Flags()
	str := func(name string, dst *string) {
		if f.Changed(name) {
			*dst, _ = f.GetString(name)
		}
	}
	status := func(dst *models.ContentStatus) {
		if f.Changed("status") {
			v, _ := f.GetString("status")
			*dst = models.ContentStatus(strings.ToLower(v))
		}
	}
	images, _ := f.GetStringSlice("image")

	switch form := form.(type) {
	case *adminclient.DocumentForm:
		str("title", &form.Title)
		str("slug", &form.Slug)
		str("summary", &form.Summary)
		str("published-at", &form.PublishedAt)
		str("content", &form.Body.Content)
		str("category", &form.Body.Category)
		status(&form.Status)
		if f.Changed("content-file") {
			path, _ := f.GetString("content-file")
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read content file: %w", err)
			}
			form.Body.Content = string(data)
		}
		if len(images) > 1 {
			return fmt.Errorf("%s takes a single image", form.Type)
		}
		if len(images) == 1 {
			img := adminclient.FileFromPath(images[0])
			form.Image = &img
		}
		if f.Changed("pdf") {
			path, _ := f.GetString("pdf")
			pdf := adminclient.FileFromPath(path)
			form.ContentFile = &pdf
		}
	case *adminclient.GalleryForm:
		str("title", &form.Title)
		str("department", &form.Department)
		str("activity-date", &form.ActivityDate)
		status(&form.Status)
		for _, path := range images {
			form.Images = append(form.Images, adminclient.FileFromPath(path))
		}
	case *adminclient.EventForm:
		str("title", &form.Title)
		str("description", &form.Description)
		str("location", &form.Location)
		str("start-date", &form.StartDate)
		str("end-date", &form.EndDate)
		str("start-time", &form.StartTime)
		str("end-time", &form.EndTime)
		if f.Changed("all-day") {
			form.IsAllDay, _ = f.GetBool("all-day")
		}
	}
	return nil
}
