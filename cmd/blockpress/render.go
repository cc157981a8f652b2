package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/eringen/blockpress/render"
)

var renderFormat string

var renderCmd = &cobra.Command{
	Use:   "render <id>",
	Short: "Fetch a post and print it as HTML, Markdown or styled terminal text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := apiClient()
		if err != nil {
			return err
		}
		doc, err := client.GetBlog(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		article := render.Project(doc, time.Now())

		var out string
		switch renderFormat {
		case "html":
			out = render.HTML(article)
		case "markdown", "md":
			out = render.Markdown(article)
		case "term":
			r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
			if err != nil {
				return fmt.Errorf("creating renderer: %w", err)
			}
			out, err = r.Render(render.Markdown(article))
			if err != nil {
				return fmt.Errorf("rendering markdown: %w", err)
			}
		default:
			return fmt.Errorf("unknown format %q (want html, markdown or term)", renderFormat)
		}
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), out); err != nil {
			return err
		}
		paragraphs, lists, images := article.Counts()
		status(cmd, "rendered", fmt.Sprintf("%s: %d paragraphs, %d lists, %d images",
			doc.ID, paragraphs, lists, images))
		return nil
	},
}

func init() {
	renderCmd.Flags().StringVarP(&renderFormat, "format", "f", "term", "output format: html, markdown or term")
	rootCmd.AddCommand(renderCmd)
}
