package main

import (
	"github.com/fatih/color"
)

func cyan(s string) string {
	c := color.New(color.FgHiCyan)
	c.EnableColor()
	return c.SprintFunc()(s)
}

func green(s string) string {
	c := color.New(color.FgHiGreen)
	c.EnableColor()
	return c.SprintFunc()(s)
}

func magenta(s string) string {
	c := color.New(color.FgHiMagenta)
	c.EnableColor()
	return c.SprintFunc()(s)
}

func yellow(s string) string {
	c := color.New(color.FgHiYellow)
	c.EnableColor()
	return c.SprintFunc()(s)
}

func red(s string) string {
	c := color.New(color.FgHiRed)
	c.EnableColor()
	return c.SprintFunc()(s)
}

func blue(s string) string {
	c := color.New(color.FgHiBlue)
	c.EnableColor()
	return c.SprintFunc()(s)
}

func black(s string) string {
	c := color.New(color.FgHiBlack)
	c.EnableColor()
	return c.SprintFunc()(s)
}
