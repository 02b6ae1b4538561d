// Command hazmon is a personal hazard monitor: it polls weather,
// seismic, air quality, local news, and system health feeds for one
// location, aggregates them into a safety report, and escalates
// unacknowledged alerts to an emergency contact.
package main

func main() {
	Execute()
}
