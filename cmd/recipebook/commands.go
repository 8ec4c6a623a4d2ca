package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alchemorsel/recipebook/internal/domain/recipe"
	"github.com/alchemorsel/recipebook/internal/domain/user"
	"github.com/alchemorsel/recipebook/internal/ports/inbound"
	"github.com/alchemorsel/recipebook/pkg/healthcheck"
)

func loginCMD(flags *globalFlags) *cobra.Command {
	var info user.Info
	var likes []string

	cmd := &cobra.Command{
		Use:   "login <user-id>",
		Short: "Sign in and persist the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := user.ParseID(args[0])
			if err != nil {
				return err
			}
			info.IDUser = id

			liked, err := parseRecipeIDs(likes)
			if err != nil {
				return err
			}

			return withCore(cmd.Context(), flags, func(ctx context.Context, c core) error {
				snap, err := c.Sessions.Login(ctx, info, liked)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%d liked recipes)\n",
					snap.Info.DisplayName(), snap.LikeCount())
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&info.Username, "username", "", "username")
	cmd.Flags().StringVar(&info.Email, "email", "", "email address")
	cmd.Flags().StringVar(&info.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&info.LastName, "last-name", "", "last name")
	cmd.Flags().StringSliceVar(&likes, "likes", nil, "recipe ids already liked on the server")
	return cmd
}

func logoutCMD(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and clear the persisted session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCore(cmd.Context(), flags, func(ctx context.Context, c core) error {
				c.Sessions.Logout(ctx)
				fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
				return nil
			})
		},
	}
}

func whoamiCMD(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the restored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCore(cmd.Context(), flags, func(ctx context.Context, c core) error {
				snap := c.Sessions.Current()
				out := cmd.OutOrStdout()
				if !snap.IsAuthenticated {
					fmt.Fprintln(out, "Not signed in")
					return nil
				}
				name := "user " + snap.UserID.String()
				if snap.Info != nil {
					name = snap.Info.DisplayName()
				}
				fmt.Fprintf(out, "%s (id %s)\n", name, snap.UserID)
				fmt.Fprintf(out, "Liked recipes: %d\n", snap.LikeCount())
				return nil
			})
		},
	}
}

func likeCMD(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "like <recipe-id>...",
		Short: "Like one or more recipes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseRecipeIDs(args)
			if err != nil {
				return err
			}

			return withCore(cmd.Context(), flags, func(ctx context.Context, c core) error {
				out := cmd.OutOrStdout()
				for _, id := range ids {
					likes, err := c.Likes.ToggleLike(ctx, id)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Liked %s (%d liked recipes)\n", recipeName(c.Index, id), likes.Len())
				}
				return nil
			})
		},
	}
}

func savedCMD(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "saved",
		Short: "List the liked recipes found in the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCore(cmd.Context(), flags, func(ctx context.Context, c core) error {
				if !c.Sessions.Current().IsAuthenticated {
					fmt.Fprintln(cmd.OutOrStdout(), "Not signed in")
					return nil
				}
				printResults(cmd.OutOrStdout(), c.Likes.Saved(), c.Likes)
				return nil
			})
		},
	}
}

func searchCMD(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "search [text]",
		Short: "Search recipes by free text; without text show the browse view",
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			return withCore(cmd.Context(), flags, func(ctx context.Context, c core) error {
				var results recipe.ResultSet
				if strings.TrimSpace(text) == "" {
					results = c.Search.Reset()
				} else {
					results = c.Search.Search(ctx, text)
				}
				printResults(cmd.OutOrStdout(), results, c.Likes)
				return nil
			})
		},
	}
}

func tagCMD(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tag <tag>",
		Short: "Search recipes carrying a tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCore(cmd.Context(), flags, func(ctx context.Context, c core) error {
				printResults(cmd.OutOrStdout(), c.Search.SearchByTag(ctx, args[0]), c.Likes)
				return nil
			})
		},
	}
}

func tagsCMD(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "List the tag vocabulary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCore(cmd.Context(), flags, func(ctx context.Context, c core) error {
				for _, tag := range c.Search.Tags() {
					fmt.Fprintln(cmd.OutOrStdout(), tag)
				}
				return nil
			})
		},
	}
}

func recommendCMD(flags *globalFlags) *cobra.Command {
	var more int

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Show personalized recommendations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCore(cmd.Context(), flags, func(ctx context.Context, c core) error {
				out := cmd.OutOrStdout()
				snap := c.Sessions.Current()
				if !snap.IsAuthenticated {
					fmt.Fprintln(out, "Not signed in")
					return nil
				}

				state := c.Recommendations.Refresh(ctx, snap.UserID)
				for i := 0; i < more && state.CanRevealMore(); i++ {
					state = c.Recommendations.RevealMore()
				}
				printRecommendations(out, state, c.Likes)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&more, "more", 0, "reveal more recommendations this many times")
	return cmd
}

func ingredientsCMD(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "ingredients",
		Short: "List the ingredients known to the personalization service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCore(cmd.Context(), flags, func(ctx context.Context, c core) error {
				names, err := c.Remote.Ingredients(ctx)
				if err != nil {
					return err
				}
				sort.Strings(names)
				for _, name := range names {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			})
		},
	}
}

func showCMD(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show <recipe-id>",
		Short: "Show a recipe from the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := recipe.ParseID(args[0])
			if err != nil {
				return err
			}

			return withCore(cmd.Context(), flags, func(ctx context.Context, c core) error {
				rec, err := c.Index.Get(id)
				if err != nil {
					return fmt.Errorf("recipe %s: %w", id, err)
				}
				printRecipe(cmd.OutOrStdout(), rec, c.Likes.IsLiked(id))
				return nil
			})
		},
	}
}

func statusCMD(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check storage, the catalog and the personalization service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCore(cmd.Context(), flags, func(ctx context.Context, c core) error {
				response := c.Health.Check(ctx)
				out := cmd.OutOrStdout()
				for _, check := range response.Checks {
					fmt.Fprintf(out, "%-10s %-9s %s\n", check.Name, check.Status, check.Message)
				}
				fmt.Fprintf(out, "overall    %s\n", response.Status)
				if response.Status == healthcheck.StatusUnhealthy {
					return fmt.Errorf("%d checks ran, status %s", len(response.Checks), response.Status)
				}
				return nil
			})
		},
	}
}

func parseRecipeIDs(args []string) ([]recipe.ID, error) {
	ids := make([]recipe.ID, 0, len(args))
	for _, arg := range args {
		id, err := recipe.ParseID(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid recipe id %q: %w", arg, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func recipeName(index *recipe.Index, id recipe.ID) string {
	rec, err := index.Get(id)
	if err != nil {
		return "recipe " + id.String()
	}
	return rec.Name
}

func printResults(out io.Writer, results recipe.ResultSet, likes inbound.LikeService) {
	if len(results) == 0 {
		fmt.Fprintln(out, "No recipes")
		return
	}
	for _, rec := range results {
		printLine(out, rec, likes.IsLiked(rec.RecipeID))
	}
}

func printRecommendations(out io.Writer, state inbound.RecommendationState, likes inbound.LikeService) {
	if !state.Eligible {
		fmt.Fprintln(out, state.Message)
		return
	}
	printResults(out, state.Visible(), likes)
	if state.CanRevealMore() {
		fmt.Fprintf(out, "(%d more available, use --more)\n", len(state.Items)-state.RevealCount)
	}
}

func printLine(out io.Writer, rec *recipe.Record, liked bool) {
	heart := " "
	if liked {
		heart = "*"
	}
	fmt.Fprintf(out, "%s %4s  %s\n", heart, rec.RecipeID, rec.Name)
}

func printRecipe(out io.Writer, rec *recipe.Record, liked bool) {
	printLine(out, rec, liked)
	if len(rec.Tags) > 0 {
		fmt.Fprintf(out, "Tags: %s\n", strings.Join(rec.Tags, ", "))
	}
	if rec.Servings != "" || rec.Time != "" {
		fmt.Fprintf(out, "Servings: %s  Time: %s\n", rec.Servings, rec.Time)
	}
	if cal := rec.Calories(); cal > 0 {
		fmt.Fprintf(out, "Calories: %.0f  Sugar: %.0f\n", cal, rec.Sugar())
	}

	fmt.Fprintln(out, "\nIngredients:")
	for _, ing := range rec.Ingredients {
		fmt.Fprintf(out, "  - %s %s\n", ing.Quantity, ing.Name)
	}

	fmt.Fprintln(out, "\nSteps:")
	for i, step := range rec.Steps {
		fmt.Fprintf(out, "  %d. %s\n", i+1, step)
	}
}
