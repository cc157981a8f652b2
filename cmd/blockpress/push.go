package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/eringen/blockpress/editor"
	"github.com/eringen/blockpress/markdown"
)

var pushCmd = &cobra.Command{
	Use:   "push <file.md>",
	Short: "Create or update a post from a Markdown file with YAML frontmatter",
	Long: `Create or update a post from a Markdown file.

The frontmatter holds mainHeading, description, author, coverImage, tags and
conclusion. When it also holds an id the post with that id is updated,
otherwise a new post is created. In the body "## " opens a section, "- " lines
form a bullet list and a line with only an image becomes an image block.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := apiClient()
		if err != nil {
			return err
		}
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		scratch := editor.New(nil)
		front, err := markdown.Import(f, scratch)
		if err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}
		doc := scratch.Document()
		doc.ID = front.ID

		ed := editor.Load(client, doc)
		saved, err := ed.Submit(cmd.Context())
		if err != nil {
			return err
		}
		verb := "created"
		if front.ID != "" {
			verb = "updated"
		}
		status(cmd, verb, fmt.Sprintf("%s (%s)", saved.MainHeading, saved.ID))
		return nil
	},
}

var pullOutput string

var pullCmd = &cobra.Command{
	Use:   "pull <id>",
	Short: "Write a post as a Markdown file that push reads back",
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
		if pullOutput == "" || pullOutput == "-" {
			return markdown.Export(cmd.OutOrStdout(), doc)
		}
		f, err := os.Create(pullOutput)
		if err != nil {
			return err
		}
		if err := markdown.Export(f, doc); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		status(cmd, "wrote", pullOutput)
		return nil
	},
}

func init() {
	pullCmd.Flags().StringVarP(&pullOutput, "output", "o", "", "file to write (default stdout)")
	rootCmd.AddCommand(pushCmd, pullCmd)
}
