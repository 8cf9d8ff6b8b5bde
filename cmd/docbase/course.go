package main

import (
	"fmt"

	"github.com/fwojciec/docbase"
)

// Run executes the course command.
func (c *CourseCmd) Run(deps *Dependencies) error {
	course, err := deps.Querier.GenerateCourse(deps.Ctx, c.Topic, c.Category, docbase.CourseShape(c.Shape), c.Count)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docbase.ErrorMessage(err))
		return err
	}

	switch course.Shape {
	case docbase.ShapeLesson:
		for i, lesson := range course.Lessons {
			fmt.Fprintf(deps.Stdout, "## Lesson %d: %s\n\n", i+1, lesson.Title)
			if lesson.Summary != "" {
				fmt.Fprintf(deps.Stdout, "%s\n\n", lesson.Summary)
			}
			fmt.Fprintf(deps.Stdout, "%s\n", lesson.Content)
			if len(lesson.KeyPoints) > 0 {
				fmt.Fprintln(deps.Stdout, "\nKey points:")
				for _, point := range lesson.KeyPoints {
					fmt.Fprintf(deps.Stdout, "  - %s\n", point)
				}
			}
			for _, u := range lesson.SourceURLs {
				fmt.Fprintf(deps.Stdout, "  source: %s\n", u)
			}
			fmt.Fprintln(deps.Stdout)
		}
	case docbase.ShapeQuiz:
		for i, q := range course.Questions {
			fmt.Fprintf(deps.Stdout, "%d. %s\n", i+1, q.Question)
			for j, opt := range q.Options {
				fmt.Fprintf(deps.Stdout, "   %c) %s\n", 'a'+j, opt)
			}
			fmt.Fprintf(deps.Stdout, "   Answer: %c) %s\n\n", 'a'+q.CorrectIndex, q.Explanation)
		}
	}
	return nil
}
